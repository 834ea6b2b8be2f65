package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/respond"
	"github.com/experiencepoints/api/internal/service"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token and puts the user in the context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil {
				var user *model.User
				user, err = auth.Authenticate(r.Context(), token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
					return
				}
			}

			status, message := authFailure(err)
			if status == http.StatusInternalServerError {
				slog.Error("authentication failed", "error", err, "path", r.URL.Path)
			}
			respond.Error(w, status, message)
		})
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				slog.Debug("ignoring invalid optional token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", service.ErrTokenMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", service.ErrTokenInvalid
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", service.ErrTokenMissing
	}
	return token, nil
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenMissing):
		return http.StatusUnauthorized, "Token is missing"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized, "Token is invalid"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, "User not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
