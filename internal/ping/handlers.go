package ping

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendPing handles POST /pings
func (h *Handler) SendPing(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req SendPingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ping, err := h.service.SendPing(r.Context(), userID, req.ToUser, req.Activity)
	if err != nil {
		switch {
		case errors.Is(err, ErrPingAlreadySent):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrSelfPing), errors.Is(err, ErrInvalidActivity):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send ping")
		}
		return
	}

	utils.RespondWithData(w, http.StatusCreated, ping)
}

// AcceptPing handles POST /pings/{id}/accept
func (h *Handler) AcceptPing(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	pingID := mux.Vars(r)["id"]

	match, err := h.service.AcceptPing(r.Context(), userID, pingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPingNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrPingExpired), errors.Is(err, ErrPingNotPending):
			utils.RespondWithError(w, http.StatusGone, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to accept ping")
		}
		return
	}

	utils.RespondWithData(w, http.StatusCreated, match)
}

// IgnorePing handles POST /pings/{id}/ignore
func (h *Handler) IgnorePing(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	pingID := mux.Vars(r)["id"]

	if err := h.service.IgnorePing(r.Context(), userID, pingID); err != nil {
		switch {
		case errors.Is(err, ErrPingNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrPingNotPending):
			utils.RespondWithError(w, http.StatusGone, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to ignore ping")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Ping ignored")
}

// GetActivePings handles GET /pings
func (h *Handler) GetActivePings(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	pings, err := h.service.GetActivePings(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pings")
		return
	}

	utils.RespondWithData(w, http.StatusOK, pings)
}

// GetActiveMatches handles GET /matches
func (h *Handler) GetActiveMatches(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	matches, err := h.service.GetActiveMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, matches)
}

// SendMessage handles POST /matches/{id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	matchID := mux.Vars(r)["id"]

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.service.SendMessage(r.Context(), userID, matchID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotParticipant):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrMatchExpired):
			utils.RespondWithError(w, http.StatusGone, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	utils.RespondWithData(w, http.StatusCreated, message)
}

// GetMessages handles GET /matches/{id}/messages
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	matchID := mux.Vars(r)["id"]

	messages, err := h.service.GetMessages(r.Context(), userID, matchID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotParticipant):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch messages")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, messages)
}
