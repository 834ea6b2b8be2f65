package model

import (
	"time"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship is a directed request edge from UserID (requester) to FriendID (recipient).
type Friendship struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	FriendID  int64     `db:"friend_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Other returns the id on the opposite end of the edge from userID.
func (f *Friendship) Other(userID int64) int64 {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

func (f *Friendship) IsActive() bool {
	return f.Status == FriendshipPending || f.Status == FriendshipAccepted
}
