package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/respond"
	"github.com/experiencepoints/api/internal/service"
	"github.com/experiencepoints/api/internal/validation"
)

type messageResponse struct {
	Message string `json:"message"`
}

// errorStatuses maps domain errors to their HTTP status and client message.
var errorStatuses = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	{service.ErrTokenMissing, http.StatusUnauthorized, "Token is missing"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
	{service.ErrTokenInvalid, http.StatusUnauthorized, "Token is invalid"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrGoalNotFound, http.StatusNotFound, "Goal not found"},
	{service.ErrShareNotFound, http.StatusNotFound, "Share link not found or inactive"},
	{service.ErrShareExpired, http.StatusGone, "Share link has expired"},
	{service.ErrProfileNotFound, http.StatusNotFound, "Profile not found"},
	{service.ErrProfileNotPublic, http.StatusForbidden, "This profile is not public"},
	{service.ErrSelfFriend, http.StatusBadRequest, "Cannot add yourself as a friend"},
	{service.ErrAlreadyFriends, http.StatusBadRequest, "Already friends"},
	{service.ErrRequestPending, http.StatusBadRequest, "Friend request already pending"},
	{service.ErrFriendRequestNotFound, http.StatusNotFound, "Friend request not found"},
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	respond.JSON(w, status, body)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// writeError renders err as {"error": message}. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		respond.Error(w, http.StatusBadRequest, vErr.Message)
		return
	}

	for _, known := range errorStatuses {
		if errors.Is(err, known.err) {
			respond.Error(w, known.status, known.message)
			return
		}
	}

	slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into req and runs struct validation on it.
func decode(r *http.Request, v *validator.Validate, req any) error {
	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		return &validation.Error{Message: "Invalid request body"}
	}

	err = v.Struct(req)
	if err != nil {
		return &validation.Error{Message: formatValidationError(err)}
	}
	return nil
}

func formatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request"
	}

	fe := fieldErrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return "Invalid " + strings.ToLower(field)
	}
}

func fieldLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
