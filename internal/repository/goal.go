package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, goalID int64) (*model.Goal, error)
	Goals(ctx context.Context, userID int64) ([]*model.Goal, error)
	GoalsByIDs(ctx context.Context, userID int64, goalIDs []int64) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	UpdateVisibility(ctx context.Context, goalID int64, visibility string) error
	Delete(ctx context.Context, goalID int64) error
	WithTx(tx *sqlx.Tx) GoalRepository
}

type goalRepository struct {
	db db.DBTX
}

func NewGoalRepository(database *sqlx.DB) GoalRepository {
	return &goalRepository{db: database}
}

func (r *goalRepository) WithTx(tx *sqlx.Tx) GoalRepository {
	return &goalRepository{db: tx}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (user_id, name, current_value, target_value, level, deadline, type, visibility, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	err := r.db.GetContext(ctx, &goal.ID, query,
		goal.UserID,
		goal.Name,
		goal.Current,
		goal.Target,
		goal.Level,
		goal.Deadline,
		goal.Type,
		goal.Visibility,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	return nil
}

// ByID loads a goal regardless of owner; callers check ownership.
func (r *goalRepository) ByID(ctx context.Context, goalID int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.GetContext(ctx, goal, query, goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(ctx context.Context, userID int64) ([]*model.Goal, error) {
	goals := []*model.Goal{}
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY id ASC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// GoalsByIDs returns the subset of goalIDs that belong to userID.
func (r *goalRepository) GoalsByIDs(ctx context.Context, userID int64, goalIDs []int64) ([]*model.Goal, error) {
	goals := []*model.Goal{}
	if len(goalIDs) == 0 {
		return goals, nil
	}

	query, args, err := psql.Select("*").
		From("goals").
		Where(sq.Eq{"user_id": userID, "id": goalIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build goals query: %w", err)
	}

	err = r.db.SelectContext(ctx, &goals, query, args...)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE goals
	          SET name = $1, current_value = $2, target_value = $3, deadline = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := r.db.ExecContext(ctx, query,
		goal.Name,
		goal.Current,
		goal.Target,
		goal.Deadline,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrGoalNotFound)
}

func (r *goalRepository) UpdateVisibility(ctx context.Context, goalID int64, visibility string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE goals SET visibility = $1 WHERE id = $2`,
		visibility, goalID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrGoalNotFound)
}

func (r *goalRepository) Delete(ctx context.Context, goalID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, goalID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrGoalNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
