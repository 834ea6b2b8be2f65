package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/experiencepoints/api/internal/catalog"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/testutil"
)

type services struct {
	db      *sqlx.DB
	auth    *AuthService
	goals   *GoalService
	profile *ProfileService
	shares  *ShareService
	friends *FriendService
}

func newServices(t *testing.T) *services {
	t.Helper()

	database := testutil.NewDB(t)
	cat, err := catalog.Load()
	require.NoError(t, err)

	users := repository.NewUserRepository(database)
	goals := NewGoalService(database, repository.NewGoalRepository(database), repository.NewHistoryRepository(database), 90*24*time.Hour)
	friends := NewFriendService(database, users, repository.NewFriendshipRepository(database))

	return &services{
		db:      database,
		auth:    NewAuthService(database, users, goals, cat, "test-secret", time.Hour),
		goals:   goals,
		profile: NewProfileService(users, goals, friends),
		shares:  NewShareService(repository.NewShareRepository(database), users, goals),
		friends: friends,
	}
}

func (s *services) register(t *testing.T, username string) *model.User {
	t.Helper()

	user, err := s.auth.Register(context.Background(), username, "pass1234", "")
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}
