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
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	ByShareID(ctx context.Context, shareID string) (*model.User, error)
	SetShareID(ctx context.Context, userID int64, shareID string) (bool, error)
	UpdateVisibility(ctx context.Context, userID int64, visibility string) error
	WithTx(tx *sqlx.Tx) UserRepository
}

type userRepository struct {
	db db.DBTX
}

func NewUserRepository(database *sqlx.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) WithTx(tx *sqlx.Tx) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, password_hash, share_id, profile_visibility, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.db.GetContext(ctx, &user.ID, query,
		user.Username,
		user.PasswordHash,
		user.ShareID,
		user.ProfileVisibility,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

func (r *userRepository) ByShareID(ctx context.Context, shareID string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE share_id = $1`, shareID)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}

	err := r.db.GetContext(ctx, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}

	query, args, err := psql.Select("*").From("users").Where(sq.Eq{"id": ids}).OrderBy("username").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build users query: %w", err)
	}

	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// SetShareID stores the permanent profile id only if none is set yet.
// It reports whether this call won the write.
func (r *userRepository) SetShareID(ctx context.Context, userID int64, shareID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET share_id = $1 WHERE id = $2 AND share_id IS NULL`,
		shareID, userID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *userRepository) UpdateVisibility(ctx context.Context, userID int64, visibility string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile_visibility = $1 WHERE id = $2`,
		visibility, userID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
