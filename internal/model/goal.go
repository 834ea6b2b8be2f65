package model

import (
	"time"
)

const (
	GoalTypeSkill     = "skill"
	GoalTypeFinancial = "financial"
)

const (
	GoalVisibilityInherit = "inherit"
	GoalVisibilityPrivate = "private"
	GoalVisibilityPublic  = "public"
)

type Goal struct {
	ID         int64      `db:"id"`
	UserID     int64      `db:"user_id"`
	Name       string     `db:"name"`
	Current    float64    `db:"current_value"`
	Target     float64    `db:"target_value"`
	Level      int        `db:"level"`
	Deadline   *time.Time `db:"deadline"`
	Type       string     `db:"type"`
	Visibility string     `db:"visibility"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`

	// Loaded separately, oldest first
	History []*History `db:"-"`
}

// OwnedBy is the single ownership predicate for every goal mutation.
func (g *Goal) OwnedBy(userID int64) bool {
	return g != nil && g.UserID == userID
}

// VisibleThrough reports whether the goal shows on a profile view.
// profileOpen is true when the profile itself is viewable by the caller.
func (g *Goal) VisibleThrough(profileOpen bool) bool {
	switch g.Visibility {
	case GoalVisibilityPublic:
		return true
	case GoalVisibilityInherit:
		return profileOpen
	default:
		return false
	}
}
