package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
)

var (
	ErrFriendshipNotFound = errors.New("friend request not found")
	ErrFriendshipExists   = errors.New("active friendship already exists")
)

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *model.Friendship) error
	Between(ctx context.Context, a, b int64) ([]*model.Friendship, error)
	PendingFor(ctx context.Context, requestID, recipientID int64) (*model.Friendship, error)
	PendingRequests(ctx context.Context, recipientID int64) ([]*model.Friendship, error)
	Accepted(ctx context.Context, userID int64) ([]*model.Friendship, error)
	UpdateStatus(ctx context.Context, id int64, from, to string) error
	WithTx(tx *sqlx.Tx) FriendshipRepository
}

type friendshipRepository struct {
	db db.DBTX
}

func NewFriendshipRepository(database *sqlx.DB) FriendshipRepository {
	return &friendshipRepository{db: database}
}

func (r *friendshipRepository) WithTx(tx *sqlx.Tx) FriendshipRepository {
	return &friendshipRepository{db: tx}
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *model.Friendship) error {
	query := `INSERT INTO friendships (user_id, friend_id, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.db.GetContext(ctx, &friendship.ID, query,
		friendship.UserID,
		friendship.FriendID,
		friendship.Status,
		friendship.CreatedAt,
		friendship.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrFriendshipExists
	}
	if err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}

	return nil
}

// Between returns every edge between a and b in either direction, newest first.
func (r *friendshipRepository) Between(ctx context.Context, a, b int64) ([]*model.Friendship, error) {
	query, args, err := psql.Select("*").
		From("friendships").
		Where(sq.Or{
			sq.Eq{"user_id": a, "friend_id": b},
			sq.Eq{"user_id": b, "friend_id": a},
		}).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build friendship query: %w", err)
	}

	edges := []*model.Friendship{}
	err = r.db.SelectContext(ctx, &edges, query, args...)
	if err != nil {
		return nil, err
	}

	return edges, nil
}

// PendingFor finds a pending request addressed to recipientID.
func (r *friendshipRepository) PendingFor(ctx context.Context, requestID, recipientID int64) (*model.Friendship, error) {
	edge := &model.Friendship{}
	query := `SELECT * FROM friendships WHERE id = $1 AND friend_id = $2 AND status = $3`

	err := r.db.GetContext(ctx, edge, query, requestID, recipientID, model.FriendshipPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, err
	}

	return edge, nil
}

func (r *friendshipRepository) PendingRequests(ctx context.Context, recipientID int64) ([]*model.Friendship, error) {
	edges := []*model.Friendship{}
	query := `SELECT * FROM friendships WHERE friend_id = $1 AND status = $2 ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &edges, query, recipientID, model.FriendshipPending)
	if err != nil {
		return nil, err
	}

	return edges, nil
}

// Accepted returns accepted edges touching userID in either column.
func (r *friendshipRepository) Accepted(ctx context.Context, userID int64) ([]*model.Friendship, error) {
	edges := []*model.Friendship{}
	query := `SELECT * FROM friendships
	          WHERE (user_id = $1 OR friend_id = $1) AND status = $2
	          ORDER BY id ASC`

	err := r.db.SelectContext(ctx, &edges, query, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	return edges, nil
}

// UpdateStatus moves an edge from one status to another. The from guard makes
// terminal states stick even under concurrent responses.
func (r *friendshipRepository) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE friendships SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrFriendshipNotFound)
}
