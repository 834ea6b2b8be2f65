package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
)

type HistoryRepository interface {
	Append(ctx context.Context, goalID int64, value float64, at time.Time) (*model.History, error)
	History(ctx context.Context, goalID int64) ([]*model.History, error)
	HistoryForGoals(ctx context.Context, goalIDs []int64) (map[int64][]*model.History, error)
	DeleteForGoal(ctx context.Context, goalID int64) (int64, error)
	WithTx(tx *sqlx.Tx) HistoryRepository
}

type historyRepository struct {
	db db.DBTX
}

func NewHistoryRepository(database *sqlx.DB) HistoryRepository {
	return &historyRepository{db: database}
}

func (r *historyRepository) WithTx(tx *sqlx.Tx) HistoryRepository {
	return &historyRepository{db: tx}
}

// Append records a snapshot. History rows are never updated.
func (r *historyRepository) Append(ctx context.Context, goalID int64, value float64, at time.Time) (*model.History, error) {
	entry := &model.History{GoalID: goalID, Date: at, Value: value}
	query := `INSERT INTO history (goal_id, recorded_at, value) VALUES ($1, $2, $3) RETURNING id`

	err := r.db.GetContext(ctx, &entry.ID, query, goalID, at, value)
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}

	return entry, nil
}

func (r *historyRepository) History(ctx context.Context, goalID int64) ([]*model.History, error) {
	entries := []*model.History{}
	query := `SELECT * FROM history WHERE goal_id = $1 ORDER BY recorded_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &entries, query, goalID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// HistoryForGoals loads the history of many goals in one query, keyed by goal id.
func (r *historyRepository) HistoryForGoals(ctx context.Context, goalIDs []int64) (map[int64][]*model.History, error) {
	byGoal := make(map[int64][]*model.History, len(goalIDs))
	if len(goalIDs) == 0 {
		return byGoal, nil
	}

	query, args, err := psql.Select("*").
		From("history").
		Where(sq.Eq{"goal_id": goalIDs}).
		OrderBy("goal_id ASC", "recorded_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var entries []*model.History
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		byGoal[entry.GoalID] = append(byGoal[entry.GoalID], entry)
	}

	return byGoal, nil
}

func (r *historyRepository) DeleteForGoal(ctx context.Context, goalID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE goal_id = $1`, goalID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
