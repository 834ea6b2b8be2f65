package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
)

var (
	ErrShareNotFound = errors.New("share link not found or inactive")
)

type ShareRepository interface {
	Create(ctx context.Context, share *model.Share) error
	ActiveByUUID(ctx context.Context, shareUUID string) (*model.Share, error)
	Shares(ctx context.Context, userID int64) ([]*model.Share, error)
	Deactivate(ctx context.Context, userID int64, shareUUID string) error
}

type shareRepository struct {
	db db.DBTX
}

func NewShareRepository(database *sqlx.DB) ShareRepository {
	return &shareRepository{db: database}
}

func (r *shareRepository) Create(ctx context.Context, share *model.Share) error {
	query := `INSERT INTO shares (user_id, share_uuid, created_at, expires_at, is_active, goals_shared)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := r.db.GetContext(ctx, &share.ID, query,
		share.UserID,
		share.ShareUUID,
		share.CreatedAt,
		share.ExpiresAt,
		share.IsActive,
		share.GoalsShared,
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}

	return nil
}

// ActiveByUUID does not filter on expiry; expiry is judged by the caller at read time.
func (r *shareRepository) ActiveByUUID(ctx context.Context, shareUUID string) (*model.Share, error) {
	share := &model.Share{}
	query := `SELECT * FROM shares WHERE share_uuid = $1 AND is_active = $2`

	err := r.db.GetContext(ctx, share, query, shareUUID, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	return share, nil
}

func (r *shareRepository) Shares(ctx context.Context, userID int64) ([]*model.Share, error) {
	shares := []*model.Share{}
	query := `SELECT * FROM shares WHERE user_id = $1 AND is_active = $2 ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &shares, query, userID, true)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

// Deactivate revokes a share owned by userID. Unknown or foreign links are ErrShareNotFound.
func (r *shareRepository) Deactivate(ctx context.Context, userID int64, shareUUID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shares SET is_active = $1 WHERE share_uuid = $2 AND user_id = $3 AND is_active = $4`,
		false, shareUUID, userID, true,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrShareNotFound)
}
