package handlers

import (
	"net/http"

	"github.com/punchlemon/ft-transcendence-sub001/middleware"
	"github.com/punchlemon/ft-transcendence-sub001/models"
	"github.com/punchlemon/ft-transcendence-sub001/services"
)

type FriendHandler struct {
	friendService services.FriendService
}

func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		AddresseeID int `json:"addressee_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	friendship, err := h.friendService.SendRequest(r.Context(), userID, input.AddresseeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"friendship": friendship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	friendshipID, err := readIDParam(r, "friendshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Accept bool `json:"accept"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	friendship, err := h.friendService.Respond(r.Context(), userID, friendshipID, input.Accept)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"friendship": friendship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var status *models.FriendshipStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		value := models.FriendshipStatus(statusStr)
		status = &value
	}

	friendships, err := h.friendService.ListFriendships(r.Context(), userID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"friendships": friendships}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
