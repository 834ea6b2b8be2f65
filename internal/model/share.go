package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Share is a revocable read capability over a user's goals.
type Share struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	ShareUUID   string     `db:"share_uuid"`
	CreatedAt   time.Time  `db:"created_at"`
	ExpiresAt   *time.Time `db:"expires_at"` // nil never expires
	IsActive    bool       `db:"is_active"`
	GoalsShared *string    `db:"goals_shared"` // JSON array of goal ids, nil shares every goal
}

func (s *Share) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// GoalIDs decodes the explicit goal subset. A nil slice means the whole profile.
func (s *Share) GoalIDs() ([]int64, error) {
	if s.GoalsShared == nil {
		return nil, nil
	}
	ids := []int64{}
	err := json.Unmarshal([]byte(*s.GoalsShared), &ids)
	if err != nil {
		return nil, fmt.Errorf("decode shared goal ids: %w", err)
	}
	return ids, nil
}

func (s *Share) SetGoalIDs(ids []int64) error {
	if ids == nil {
		s.GoalsShared = nil
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode shared goal ids: %w", err)
	}
	encoded := string(raw)
	s.GoalsShared = &encoded
	return nil
}
