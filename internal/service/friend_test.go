package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/experiencepoints/api/internal/validation"
)

func TestFriendRequestAccepted(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice123")
	bob := s.register(t, "bob_runner")

	request, err := s.friends.Add(ctx, bob.ID, "alice123")
	require.NoError(t, err)

	pending, err := s.friends.PendingRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].RequestID)
	assert.Equal(t, "bob_runner", pending[0].Requester.Username)

	// Only the recipient may answer.
	err = s.friends.Respond(ctx, bob.ID, request.ID, FriendResponseAccept)
	assert.ErrorIs(t, err, ErrFriendRequestNotFound)

	require.NoError(t, s.friends.Respond(ctx, alice.ID, request.ID, FriendResponseAccept))

	aliceFriends, err := s.friends.Friends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].ID)

	bobFriends, err := s.friends.Friends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice.ID, bobFriends[0].ID)

	pending, err = s.friends.PendingRequests(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Terminal states stick.
	err = s.friends.Respond(ctx, alice.ID, request.ID, FriendResponseReject)
	assert.ErrorIs(t, err, ErrFriendRequestNotFound)

	_, err = s.friends.Add(ctx, alice.ID, "bob_runner")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestFriendRequestRules(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice123")
	bob := s.register(t, "bob_runner")

	_, err := s.friends.Add(ctx, alice.ID, "")
	assert.ErrorAs(t, err, new(*validation.Error))

	_, err = s.friends.Add(ctx, alice.ID, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.friends.Add(ctx, alice.ID, "alice123")
	assert.ErrorIs(t, err, ErrSelfFriend)

	request, err := s.friends.Add(ctx, alice.ID, "bob_runner")
	require.NoError(t, err)

	_, err = s.friends.Add(ctx, alice.ID, "bob_runner")
	assert.ErrorIs(t, err, ErrRequestPending)
	_, err = s.friends.Add(ctx, bob.ID, "alice123")
	assert.ErrorIs(t, err, ErrRequestPending)

	err = s.friends.Respond(ctx, bob.ID, request.ID, "maybe")
	assert.ErrorAs(t, err, new(*validation.Error))

	require.NoError(t, s.friends.Respond(ctx, bob.ID, request.ID, FriendResponseReject))

	friends, err := s.friends.Friends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// A rejection does not block a new request.
	_, err = s.friends.Add(ctx, bob.ID, "alice123")
	require.NoError(t, err)

	var active int
	require.NoError(t, s.db.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM friendships WHERE status IN ('pending', 'accepted')`))
	assert.Equal(t, 1, active)
}
