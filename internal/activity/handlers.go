package activity

import (
	"encoding/json"
	"net/http"

	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RecordSample handles POST /location/sample
func (h *Handler) RecordSample(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var sample Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(sample); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	RecordSampleIngested()

	obs, err := h.service.RecordSample(r.Context(), userID, sample)
	if err != nil {
		if err == ErrInvalidSample {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record sample")
		return
	}

	if obs == nil {
		utils.RespondWithMessage(w, http.StatusAccepted, "Sample recorded")
		return
	}

	utils.RespondWithData(w, http.StatusCreated, obs)
}

// GetCurrentActivity handles GET /activity/current
func (h *Handler) GetCurrentActivity(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	obs, err := h.service.GetCurrentActivity(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	if obs == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No current activity")
		return
	}

	utils.RespondWithData(w, http.StatusOK, obs)
}

// GetLastLocation handles GET /location/last
func (h *Handler) GetLastLocation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	presence, err := h.service.GetLastLocation(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch location")
		return
	}

	if presence == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No location recorded")
		return
	}

	utils.RespondWithData(w, http.StatusOK, presence)
}

// StopTracking handles POST /location/stop
func (h *Handler) StopTracking(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.service.StopTracking(r.Context(), userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to stop tracking")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Tracking stopped")
}
