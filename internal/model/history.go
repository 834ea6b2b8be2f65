package model

import (
	"time"
)

// History is an append-only snapshot of a goal's value.
type History struct {
	ID     int64     `db:"id"`
	GoalID int64     `db:"goal_id"`
	Date   time.Time `db:"recorded_at"`
	Value  float64   `db:"value"`
}
