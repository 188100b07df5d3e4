package karma

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /karma/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch karma balance")
		return
	}

	utils.RespondWithData(w, http.StatusOK, balance)
}

type helpNeighborRequest struct {
	HelpedID   string     `json:"helped_id" validate:"required,uuid"`
	Task       string     `json:"task" validate:"required,max=500"`
	Difficulty Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// HelpNeighbor handles POST /karma/help
func (h *Handler) HelpNeighbor(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req helpNeighborRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Difficulty == "" {
		req.Difficulty = DifficultyMedium
	}

	if err := h.service.HelpNeighbor(r.Context(), userID, req.HelpedID, req.Task, req.Difficulty); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record help")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "Help recorded")
}

type requestHelpRequest struct {
	Task      string `json:"task" validate:"required,max=500"`
	KarmaCost int    `json:"karma_cost" validate:"omitempty,min=1,max=100"`
}

// RequestHelp handles POST /karma/request
func (h *Handler) RequestHelp(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req requestHelpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RequestHelp(r.Context(), userID, req.Task, req.KarmaCost); err != nil {
		if errors.Is(err, ErrInsufficientKarma) {
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to request help")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "Help requested")
}

type emergencyHelpRequest struct {
	HelpedID    string `json:"helped_id" validate:"required,uuid"`
	Description string `json:"description" validate:"required,max=500"`
}

// EmergencyHelp handles POST /karma/emergency
func (h *Handler) EmergencyHelp(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req emergencyHelpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.EmergencyHelp(r.Context(), userID, req.HelpedID, req.Description); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record emergency help")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "Emergency help recorded")
}

// GetHistory handles GET /karma/history?limit=
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.service.GetTransactionHistory(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	utils.RespondWithData(w, http.StatusOK, history)
}

// GetLeaderboard handles GET /karma/leaderboard?limit=
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	leaderboard, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	utils.RespondWithData(w, http.StatusOK, leaderboard)
}
