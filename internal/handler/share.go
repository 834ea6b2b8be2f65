package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
)

// createShareRequest: omitted goal_ids shares the whole profile, omitted
// expiry_days never expires.
type createShareRequest struct {
	GoalIDs    []int64 `json:"goal_ids"`
	ExpiryDays *int    `json:"expiry_days"`
}

type shareResponse struct {
	ShareID   string     `json:"share_id"`
	ShareURL  string     `json:"share_url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type shareListItem struct {
	ShareID   string     `json:"share_id"`
	ShareURL  string     `json:"share_url"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	GoalIDs   []int64    `json:"goal_ids"`
}

type sharesResponse struct {
	Shares []shareListItem `json:"shares"`
}

type sharedViewResponse struct {
	User      model.PublicUser `json:"user"`
	Goals     []goalResponse   `json:"goals"`
	SharedAt  time.Time        `json:"shared_at"`
	ExpiresAt *time.Time       `json:"expires_at"`
}

type ShareHandler struct {
	shareService *service.ShareService
	validator    *validator.Validate
	appURL       string
}

func NewShareHandler(shareService *service.ShareService, appURL string) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		validator:    newValidator(),
		appURL:       appURL,
	}
}

func (h *ShareHandler) shareURL(r *http.Request, shareUUID string) string {
	return baseURL(r, h.appURL) + "/share/" + shareUUID
}

func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createShareRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	share, err := h.shareService.Create(r.Context(), user.ID, req.GoalIDs, req.ExpiryDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		ShareID:   share.ShareUUID,
		ShareURL:  h.shareURL(r, share.ShareUUID),
		ExpiresAt: share.ExpiresAt,
	})
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	shares, err := h.shareService.Shares(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]shareListItem, 0, len(shares))
	for _, share := range shares {
		goalIDs, err := share.GoalIDs()
		if err != nil {
			writeError(w, r, err)
			return
		}
		items = append(items, shareListItem{
			ShareID:   share.ShareUUID,
			ShareURL:  h.shareURL(r, share.ShareUUID),
			CreatedAt: share.CreatedAt,
			ExpiresAt: share.ExpiresAt,
			GoalIDs:   goalIDs,
		})
	}

	writeJSON(w, http.StatusOK, sharesResponse{Shares: items})
}

func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.shareService.Revoke(r.Context(), user.ID, chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, "Share link revoked")
}

func (h *ShareHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.shareService.View(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sharedViewResponse{
		User:      view.User,
		Goals:     newGoalResponses(view.Goals),
		SharedAt:  view.SharedAt,
		ExpiresAt: view.ExpiresAt,
	})
}
