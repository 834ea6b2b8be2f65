package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/validation"
)

// ProfileView is what a visitor of a permanent profile link sees.
type ProfileView struct {
	User  model.PublicUser
	Goals []*model.Goal
}

type ProfileService struct {
	userRepository repository.UserRepository
	goalService    *GoalService
	friendService  *FriendService
}

func NewProfileService(
	userRepository repository.UserRepository,
	goalService *GoalService,
	friendService *FriendService,
) *ProfileService {
	return &ProfileService{
		userRepository: userRepository,
		goalService:    goalService,
		friendService:  friendService,
	}
}

func (s *ProfileService) SetVisibility(ctx context.Context, userID int64, visibility string) error {
	err := validation.ValidateProfileVisibility(visibility)
	if err != nil {
		return err
	}
	return s.userRepository.UpdateVisibility(ctx, userID, visibility)
}

// PermanentLink returns the user's profile id, minting one on first use.
// Repeated calls return the same id.
func (s *ProfileService) PermanentLink(ctx context.Context, user *model.User) (string, error) {
	if user.HasShareID() {
		return *user.ShareID, nil
	}

	shareID := uuid.NewString()
	set, err := s.userRepository.SetShareID(ctx, user.ID, shareID)
	if err != nil {
		return "", fmt.Errorf("failed to set profile id: %w", err)
	}
	if set {
		user.ShareID = &shareID
		slog.Info("permanent profile link created", "user_id", user.ID)
		return shareID, nil
	}

	// A concurrent request won; use its id.
	current, err := s.userRepository.ByID(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if !current.HasShareID() {
		return "", fmt.Errorf("profile id missing for user %d", user.ID)
	}
	user.ShareID = current.ShareID
	return *current.ShareID, nil
}

// PublicProfile resolves a permanent profile id for viewerID (0 for anonymous).
// Public profiles are open to everyone, friends profiles to the owner and
// accepted friends. Only goals visible through an open profile are returned.
func (s *ProfileService) PublicProfile(ctx context.Context, profileID string, viewerID int64) (*ProfileView, error) {
	user, err := s.userRepository.ByShareID(ctx, profileID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	open, err := s.canView(ctx, user, viewerID)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrProfileNotPublic
	}

	goals, err := s.goalService.Goals(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	visible := []*model.Goal{}
	for _, goal := range goals {
		if goal.VisibleThrough(true) {
			visible = append(visible, goal)
		}
	}

	return &ProfileView{User: user.Public(), Goals: visible}, nil
}

func (s *ProfileService) canView(ctx context.Context, owner *model.User, viewerID int64) (bool, error) {
	switch owner.ProfileVisibility {
	case model.ProfilePublic:
		return true, nil
	case model.ProfileFriends:
		if viewerID == 0 {
			return false, nil
		}
		if viewerID == owner.ID {
			return true, nil
		}
		return s.friendService.AreFriends(ctx, owner.ID, viewerID)
	default:
		return false, nil
	}
}
