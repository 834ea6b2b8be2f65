package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
)

type addFriendRequest struct {
	Username string `json:"username" validate:"required"`
}

type respondFriendRequest struct {
	RequestID int64  `json:"request_id" validate:"required"`
	Response  string `json:"response" validate:"required,oneof=accept reject"`
}

type friendsResponse struct {
	Friends []model.PublicUser `json:"friends"`
}

type friendRequestItem struct {
	model.PublicUser
	RequestID int64     `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

type friendRequestsResponse struct {
	Requests []friendRequestItem `json:"requests"`
}

type addFriendResponse struct {
	Message   string `json:"message"`
	RequestID int64  `json:"request_id"`
}

type FriendHandler struct {
	friendService *service.FriendService
	validator     *validator.Validate
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		validator:     newValidator(),
	}
}

func (h *FriendHandler) Friends(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	friends, err := h.friendService.Friends(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, friendsResponse{Friends: friends})
}

func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	requests, err := h.friendService.PendingRequests(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]friendRequestItem, 0, len(requests))
	for _, req := range requests {
		items = append(items, friendRequestItem{
			PublicUser: req.Requester,
			RequestID:  req.RequestID,
			CreatedAt:  req.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, friendRequestsResponse{Requests: items})
}

func (h *FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req addFriendRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	friendship, err := h.friendService.Add(r.Context(), user.ID, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addFriendResponse{
		Message:   "Friend request sent",
		RequestID: friendship.ID,
	})
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req respondFriendRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.friendService.Respond(r.Context(), user.ID, req.RequestID, req.Response)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Response == service.FriendResponseAccept {
		writeMessage(w, "Friend request accepted")
		return
	}
	writeMessage(w, "Friend request rejected")
}
