package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/validation"
)

const (
	FriendResponseAccept = "accept"
	FriendResponseReject = "reject"
)

// FriendRequest is a pending edge addressed to the current user.
type FriendRequest struct {
	Requester model.PublicUser
	RequestID int64
	CreatedAt time.Time
}

type FriendService struct {
	db                   *sqlx.DB
	userRepository       repository.UserRepository
	friendshipRepository repository.FriendshipRepository
	now                  func() time.Time
}

func NewFriendService(
	database *sqlx.DB,
	userRepository repository.UserRepository,
	friendshipRepository repository.FriendshipRepository,
) *FriendService {
	return &FriendService{
		db:                   database,
		userRepository:       userRepository,
		friendshipRepository: friendshipRepository,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// Add sends a friend request from requesterID to the named user.
// Rejected edges do not block a new request.
func (s *FriendService) Add(ctx context.Context, requesterID int64, username string) (*model.Friendship, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &validation.Error{Message: "Username is required"}
	}

	target, err := s.userRepository.ByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if target.ID == requesterID {
		return nil, ErrSelfFriend
	}

	now := s.now()
	friendship := &model.Friendship{
		UserID:    requesterID,
		FriendID:  target.ID,
		Status:    model.FriendshipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.friendshipRepository.WithTx(tx)

		edges, err := repo.Between(ctx, requesterID, target.ID)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if !edge.IsActive() {
				continue
			}
			if edge.Status == model.FriendshipAccepted {
				return ErrAlreadyFriends
			}
			return ErrRequestPending
		}

		return repo.Create(ctx, friendship)
	})
	if errors.Is(err, repository.ErrFriendshipExists) {
		return nil, ErrRequestPending
	}
	if err != nil {
		return nil, err
	}

	slog.Info("friend request sent", "request_id", friendship.ID, "from", requesterID, "to", target.ID)
	return friendship, nil
}

// Respond accepts or rejects a pending request addressed to responderID.
// Requests addressed to someone else are reported as not found.
func (s *FriendService) Respond(ctx context.Context, responderID, requestID int64, response string) error {
	var status string
	switch response {
	case FriendResponseAccept:
		status = model.FriendshipAccepted
	case FriendResponseReject:
		status = model.FriendshipRejected
	default:
		return &validation.Error{Message: "Invalid response"}
	}

	err := db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.friendshipRepository.WithTx(tx)

		edge, err := repo.PendingFor(ctx, requestID, responderID)
		if err != nil {
			return err
		}

		return repo.UpdateStatus(ctx, edge.ID, model.FriendshipPending, status)
	})
	if errors.Is(err, repository.ErrFriendshipNotFound) {
		return ErrFriendRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to respond to friend request: %w", err)
	}

	slog.Info("friend request answered", "request_id", requestID, "status", status)
	return nil
}

// Friends lists the users connected to userID by an accepted edge in either direction.
func (s *FriendService) Friends(ctx context.Context, userID int64) ([]model.PublicUser, error) {
	edges, err := s.friendshipRepository.Accepted(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.Other(userID))
	}

	users, err := s.userRepository.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	friends := make([]model.PublicUser, 0, len(users))
	for _, user := range users {
		friends = append(friends, user.Public())
	}
	return friends, nil
}

func (s *FriendService) PendingRequests(ctx context.Context, userID int64) ([]FriendRequest, error) {
	edges, err := s.friendshipRepository.PendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.UserID)
	}

	users, err := s.userRepository.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	requests := make([]FriendRequest, 0, len(edges))
	for _, edge := range edges {
		requester, ok := byID[edge.UserID]
		if !ok {
			continue
		}
		requests = append(requests, FriendRequest{
			Requester: requester.Public(),
			RequestID: edge.ID,
			CreatedAt: edge.CreatedAt,
		})
	}
	return requests, nil
}

func (s *FriendService) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	edges, err := s.friendshipRepository.Between(ctx, a, b)
	if err != nil {
		return false, err
	}
	for _, edge := range edges {
		if edge.Status == model.FriendshipAccepted {
			return true, nil
		}
	}
	return false, nil
}
