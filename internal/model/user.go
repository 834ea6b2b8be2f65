package model

import (
	"time"
)

const (
	ProfilePrivate = "private"
	ProfileFriends = "friends"
	ProfilePublic  = "public"
)

type User struct {
	ID                int64     `db:"id"`
	Username          string    `db:"username"`
	PasswordHash      string    `db:"password_hash"`
	ShareID           *string   `db:"share_id"` // Permanent profile link, minted on demand
	ProfileVisibility string    `db:"profile_visibility"`
	CreatedAt         time.Time `db:"created_at"`
}

func (u *User) HasShareID() bool {
	return u.ShareID != nil && *u.ShareID != ""
}
