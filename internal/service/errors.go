package service

import (
	"errors"
)

// Authentication
var (
	ErrTokenMissing       = errors.New("token is missing")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// Goals and sharing
var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrShareNotFound    = errors.New("share link not found or inactive")
	ErrShareExpired     = errors.New("share link has expired")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileNotPublic = errors.New("profile is not public")
)

// Friendships
var (
	ErrSelfFriend            = errors.New("cannot add yourself as a friend")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrRequestPending        = errors.New("friend request already pending")
	ErrFriendRequestNotFound = errors.New("friend request not found")
)
