package handler

import (
	"time"

	"github.com/experiencepoints/api/internal/model"
)

type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type historyResponse struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type goalResponse struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Current    float64           `json:"current"`
	Target     float64           `json:"target"`
	Level      int               `json:"level"`
	Deadline   *time.Time        `json:"deadline"`
	Type       string            `json:"type"`
	Visibility string            `json:"visibility"`
	History    []historyResponse `json:"history"`
}

func newGoalResponse(goal *model.Goal) goalResponse {
	history := make([]historyResponse, 0, len(goal.History))
	for _, entry := range goal.History {
		history = append(history, historyResponse{Date: entry.Date, Value: entry.Value})
	}

	return goalResponse{
		ID:         goal.ID,
		Name:       goal.Name,
		Current:    goal.Current,
		Target:     goal.Target,
		Level:      goal.Level,
		Deadline:   goal.Deadline,
		Type:       goal.Type,
		Visibility: goal.Visibility,
		History:    history,
	}
}

func newGoalResponses(goals []*model.Goal) []goalResponse {
	out := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		out = append(out, newGoalResponse(goal))
	}
	return out
}
