package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
	"github.com/experiencepoints/api/internal/validation"
)

// saveGoalRequest creates a goal when ID is absent or zero, otherwise updates it.
type saveGoalRequest struct {
	ID       *int64   `json:"id"`
	Name     *string  `json:"name"`
	Current  *float64 `json:"current"`
	Target   *float64 `json:"target"`
	Deadline *string  `json:"deadline"`
	Type     string   `json:"type" validate:"omitempty,oneof=skill financial"`
}

type goalVisibilityRequest struct {
	GoalID     int64  `json:"goal_id" validate:"required"`
	Visibility string `json:"visibility"`
}

type goalsResponse struct {
	Skills    []goalResponse `json:"skills"`
	Financial []goalResponse `json:"financial"`
}

// Accepted deadline layouts, most specific first.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

type GoalHandler struct {
	goalService *service.GoalService
	validator   *validator.Validate
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		validator:   newValidator(),
	}
}

func (h *GoalHandler) Goals(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	skills, financial := service.SplitByType(goals)
	writeJSON(w, http.StatusOK, goalsResponse{
		Skills:    newGoalResponses(skills),
		Financial: newGoalResponses(financial),
	})
}

func (h *GoalHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req saveGoalRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var goal *model.Goal
	if req.ID != nil && *req.ID != 0 {
		goal, err = h.goalService.Update(r.Context(), user.ID, *req.ID, service.GoalPatch{
			Name:     req.Name,
			Current:  req.Current,
			Target:   req.Target,
			Deadline: deadline,
		})
	} else {
		input := service.GoalInput{
			Current:  req.Current,
			Target:   req.Target,
			Deadline: deadline,
			Type:     req.Type,
		}
		if req.Name != nil {
			input.Name = *req.Name
		}
		goal, err = h.goalService.Create(r.Context(), user.ID, input)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, service.ErrGoalNotFound)
		return
	}

	err = h.goalService.Delete(r.Context(), user.ID, goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, "Goal deleted successfully")
}

func (h *GoalHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req goalVisibilityRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.SetVisibility(r.Context(), user.ID, req.GoalID, req.Visibility)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

// parseDeadline treats a missing or empty deadline as "not provided".
func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	for _, layout := range deadlineLayouts {
		t, err := time.Parse(layout, *raw)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, &validation.Error{Message: "Invalid deadline format"}
}
