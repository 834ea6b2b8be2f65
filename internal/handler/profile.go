package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
)

type profileVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type profileVisibilityResponse struct {
	ProfileVisibility string `json:"profile_visibility"`
}

type permanentLinkResponse struct {
	ProfileID  string `json:"profile_id"`
	ProfileURL string `json:"profile_url"`
}

type profileResponse struct {
	User  model.PublicUser `json:"user"`
	Goals []goalResponse   `json:"goals"`
}

type ProfileHandler struct {
	profileService *service.ProfileService
	validator      *validator.Validate
	appURL         string
}

func NewProfileHandler(profileService *service.ProfileService, appURL string) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		validator:      newValidator(),
		appURL:         appURL,
	}
}

func (h *ProfileHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req profileVisibilityRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.profileService.SetVisibility(r.Context(), user.ID, req.Visibility)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileVisibilityResponse{ProfileVisibility: req.Visibility})
}

func (h *ProfileHandler) PermanentLink(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profileID, err := h.profileService.PermanentLink(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, permanentLinkResponse{
		ProfileID:  profileID,
		ProfileURL: baseURL(r, h.appURL) + "/profile/" + profileID,
	})
}

// View serves a permanent profile link. A bearer token is optional and only
// matters for friends-only profiles.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.profileService.PublicProfile(r.Context(), chi.URLParam(r, "id"), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:  view.User,
		Goals: newGoalResponses(view.Goals),
	})
}
