package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Template string `json:"template"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   newValidator(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password, req.Template)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, "Registration successful")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, "Login successful")
}

// Logout is stateless; clients drop the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Logout successful")
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *model.User, message string) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: message,
		Token:   token,
		User:    userSummary{ID: user.ID, Username: user.Username},
	})
}
