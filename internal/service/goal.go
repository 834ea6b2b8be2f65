package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/catalog"
	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/validation"
)

const (
	DefaultGoalTarget = 10
	DefaultGoalLevel  = 1
	maxGoalNameLength = 80
)

// GoalInput describes a new goal. Nil fields take defaults.
type GoalInput struct {
	Name     string
	Current  *float64
	Target   *float64
	Deadline *time.Time
	Type     string
}

// GoalPatch lists the mutable fields of a goal. Nil fields are left unchanged.
type GoalPatch struct {
	Name     *string
	Current  *float64
	Target   *float64
	Deadline *time.Time
}

type GoalService struct {
	db              *sqlx.DB
	repo            repository.GoalRepository
	historyRepo     repository.HistoryRepository
	defaultDeadline time.Duration
	now             func() time.Time
}

func NewGoalService(
	database *sqlx.DB,
	repo repository.GoalRepository,
	historyRepo repository.HistoryRepository,
	defaultDeadline time.Duration,
) *GoalService {
	return &GoalService{
		db:              database,
		repo:            repo,
		historyRepo:     historyRepo,
		defaultDeadline: defaultDeadline,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a goal and its first history snapshot in one transaction.
func (s *GoalService) Create(ctx context.Context, ownerID int64, input GoalInput) (*model.Goal, error) {
	name := strings.TrimSpace(input.Name)
	err := validateGoalName(name)
	if err != nil {
		return nil, err
	}

	goalType := input.Type
	if goalType == "" {
		goalType = model.GoalTypeSkill
	}
	err = validation.ValidateGoalType(goalType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	goal := &model.Goal{
		UserID:     ownerID,
		Name:       name,
		Current:    valueOr(input.Current, 0),
		Target:     valueOr(input.Target, DefaultGoalTarget),
		Level:      DefaultGoalLevel,
		Deadline:   input.Deadline,
		Type:       goalType,
		Visibility: model.GoalVisibilityInherit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if goal.Deadline == nil {
		deadline := now.Add(s.defaultDeadline)
		goal.Deadline = &deadline
	}

	err = db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.insertWithHistory(ctx, tx, goal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// CreateFromTemplate instantiates every template entry for userID inside the caller's transaction.
// Template goals start without a deadline.
func (s *GoalService) CreateFromTemplate(ctx context.Context, tx *sqlx.Tx, userID int64, tmpl catalog.Template) ([]*model.Goal, error) {
	now := s.now()
	var goals []*model.Goal

	add := func(entries []catalog.TemplateGoal, goalType string) error {
		for _, entry := range entries {
			goal := &model.Goal{
				UserID:     userID,
				Name:       entry.Name,
				Current:    entry.Current,
				Target:     entry.Target,
				Level:      entry.Level,
				Type:       goalType,
				Visibility: model.GoalVisibilityInherit,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if goal.Level == 0 {
				goal.Level = DefaultGoalLevel
			}
			err := s.insertWithHistory(ctx, tx, goal)
			if err != nil {
				return fmt.Errorf("template %s goal %q: %w", tmpl.ID, entry.Name, err)
			}
			goals = append(goals, goal)
		}
		return nil
	}

	err := add(tmpl.Skills, model.GoalTypeSkill)
	if err != nil {
		return nil, err
	}
	err = add(tmpl.Financial, model.GoalTypeFinancial)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (s *GoalService) insertWithHistory(ctx context.Context, tx *sqlx.Tx, goal *model.Goal) error {
	err := s.repo.WithTx(tx).Create(ctx, goal)
	if err != nil {
		return err
	}

	entry, err := s.historyRepo.WithTx(tx).Append(ctx, goal.ID, goal.Current, goal.CreatedAt)
	if err != nil {
		return err
	}

	goal.History = []*model.History{entry}
	return nil
}

// owned loads a goal and applies the ownership predicate. A goal owned by
// someone else is reported exactly like a missing one.
func (s *GoalService) owned(ctx context.Context, repo repository.GoalRepository, ownerID, goalID int64) (*model.Goal, error) {
	goal, err := repo.ByID(ctx, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	if !goal.OwnedBy(ownerID) {
		slog.Debug("goal access denied", "goal_id", goalID, "user_id", ownerID)
		return nil, ErrGoalNotFound
	}

	return goal, nil
}

// Update applies patch and appends a history snapshot of the resulting value.
func (s *GoalService) Update(ctx context.Context, ownerID, goalID int64, patch GoalPatch) (*model.Goal, error) {
	var goal *model.Goal

	err := db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		var err error
		goal, err = s.owned(ctx, repo, ownerID, goalID)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			err = validateGoalName(name)
			if err != nil {
				return err
			}
			goal.Name = name
		}
		if patch.Current != nil {
			goal.Current = *patch.Current
		}
		if patch.Target != nil {
			goal.Target = *patch.Target
		}
		if patch.Deadline != nil {
			goal.Deadline = patch.Deadline
		}
		goal.UpdatedAt = s.now()

		err = repo.Update(ctx, goal)
		if err != nil {
			return translateGoalErr(err)
		}

		history := s.historyRepo.WithTx(tx)
		_, err = history.Append(ctx, goal.ID, goal.Current, goal.UpdatedAt)
		if err != nil {
			return err
		}

		goal.History, err = history.History(ctx, goal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Delete removes the goal's history rows and then the goal itself.
func (s *GoalService) Delete(ctx context.Context, ownerID, goalID int64) error {
	return db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		_, err := s.owned(ctx, repo, ownerID, goalID)
		if err != nil {
			return err
		}

		_, err = s.historyRepo.WithTx(tx).DeleteForGoal(ctx, goalID)
		if err != nil {
			return fmt.Errorf("failed to delete goal history: %w", err)
		}

		return translateGoalErr(repo.Delete(ctx, goalID))
	})
}

func (s *GoalService) SetVisibility(ctx context.Context, ownerID, goalID int64, visibility string) (*model.Goal, error) {
	err := validation.ValidateGoalVisibility(visibility)
	if err != nil {
		return nil, err
	}

	var goal *model.Goal
	err = db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		var err error
		goal, err = s.owned(ctx, repo, ownerID, goalID)
		if err != nil {
			return err
		}

		err = repo.UpdateVisibility(ctx, goal.ID, visibility)
		if err != nil {
			return translateGoalErr(err)
		}
		goal.Visibility = visibility

		goal.History, err = s.historyRepo.WithTx(tx).History(ctx, goal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Goals returns the owner's goals with history attached.
func (s *GoalService) Goals(ctx context.Context, ownerID int64) ([]*model.Goal, error) {
	goals, err := s.repo.Goals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.attachHistory(ctx, goals)
}

// GoalsByIDs returns the listed goals that belong to ownerID, with history.
func (s *GoalService) GoalsByIDs(ctx context.Context, ownerID int64, goalIDs []int64) ([]*model.Goal, error) {
	goals, err := s.repo.GoalsByIDs(ctx, ownerID, goalIDs)
	if err != nil {
		return nil, err
	}
	return s.attachHistory(ctx, goals)
}

func (s *GoalService) attachHistory(ctx context.Context, goals []*model.Goal) ([]*model.Goal, error) {
	ids := make([]int64, len(goals))
	for i, goal := range goals {
		ids[i] = goal.ID
	}

	byGoal, err := s.historyRepo.HistoryForGoals(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, goal := range goals {
		goal.History = byGoal[goal.ID]
		if goal.History == nil {
			goal.History = []*model.History{}
		}
	}

	return goals, nil
}

// SplitByType partitions goals into skill and financial lists, keeping order.
func SplitByType(goals []*model.Goal) (skills, financial []*model.Goal) {
	skills = []*model.Goal{}
	financial = []*model.Goal{}
	for _, goal := range goals {
		if goal.Type == model.GoalTypeFinancial {
			financial = append(financial, goal)
		} else {
			skills = append(skills, goal)
		}
	}
	return skills, financial
}

func validateGoalName(name string) error {
	if name == "" {
		return &validation.Error{Message: "Goal name is required"}
	}
	if utf8.RuneCountInString(name) > maxGoalNameLength {
		return &validation.Error{Message: "Goal name is too long (max 80 characters)"}
	}
	return nil
}

// translateGoalErr reports a goal that vanished between the ownership check
// and the write as not found.
func translateGoalErr(err error) error {
	if errors.Is(err, repository.ErrGoalNotFound) {
		return ErrGoalNotFound
	}
	return err
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
