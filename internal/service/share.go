package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/validation"
)

// SharedView is what a share link resolves to.
type SharedView struct {
	User      model.PublicUser
	Goals     []*model.Goal
	SharedAt  time.Time
	ExpiresAt *time.Time
}

type ShareService struct {
	shareRepository repository.ShareRepository
	userRepository  repository.UserRepository
	goalService     *GoalService
	now             func() time.Time
}

func NewShareService(
	shareRepository repository.ShareRepository,
	userRepository repository.UserRepository,
	goalService *GoalService,
) *ShareService {
	return &ShareService{
		shareRepository: shareRepository,
		userRepository:  userRepository,
		goalService:     goalService,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Create issues a new share link. A nil goalIDs shares every goal; a nil
// expiryDays never expires.
func (s *ShareService) Create(ctx context.Context, ownerID int64, goalIDs []int64, expiryDays *int) (*model.Share, error) {
	now := s.now()
	share := &model.Share{
		UserID:    ownerID,
		ShareUUID: uuid.NewString(),
		CreatedAt: now,
		IsActive:  true,
	}

	if expiryDays != nil {
		if *expiryDays < 1 {
			return nil, &validation.Error{Message: "Expiry days must be at least 1"}
		}
		expiresAt := now.AddDate(0, 0, *expiryDays)
		share.ExpiresAt = &expiresAt
	}

	err := share.SetGoalIDs(goalIDs)
	if err != nil {
		return nil, err
	}

	err = s.shareRepository.Create(ctx, share)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	slog.Info("share link created", "user_id", ownerID, "share_id", share.ShareUUID, "goals", len(goalIDs))
	return share, nil
}

// View resolves a share link. Inactive or unknown links are ErrShareNotFound,
// expired ones ErrShareExpired. The goal subset ignores goal visibility but
// never reaches goals of another owner.
func (s *ShareService) View(ctx context.Context, shareUUID string) (*SharedView, error) {
	share, err := s.shareRepository.ActiveByUUID(ctx, shareUUID)
	if errors.Is(err, repository.ErrShareNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	if share.IsExpired(s.now()) {
		return nil, ErrShareExpired
	}

	user, err := s.userRepository.ByID(ctx, share.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	goalIDs, err := share.GoalIDs()
	if err != nil {
		return nil, err
	}

	var goals []*model.Goal
	if goalIDs == nil {
		goals, err = s.goalService.Goals(ctx, user.ID)
	} else {
		goals, err = s.goalService.GoalsByIDs(ctx, user.ID, goalIDs)
	}
	if err != nil {
		return nil, err
	}

	return &SharedView{
		User:      user.Public(),
		Goals:     goals,
		SharedAt:  share.CreatedAt,
		ExpiresAt: share.ExpiresAt,
	}, nil
}

func (s *ShareService) Shares(ctx context.Context, ownerID int64) ([]*model.Share, error) {
	return s.shareRepository.Shares(ctx, ownerID)
}

func (s *ShareService) Revoke(ctx context.Context, ownerID int64, shareUUID string) error {
	err := s.shareRepository.Deactivate(ctx, ownerID, shareUUID)
	if errors.Is(err, repository.ErrShareNotFound) {
		return ErrShareNotFound
	}
	return err
}
