package ctxkeys

import (
	"context"

	"github.com/experiencepoints/api/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey contextKey = "user"
)

// User returns the authenticated user, or nil on anonymous requests.
func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserID returns the authenticated user's id, or 0 when anonymous.
func UserID(ctx context.Context) int64 {
	if user := User(ctx); user != nil {
		return user.ID
	}
	return 0
}
