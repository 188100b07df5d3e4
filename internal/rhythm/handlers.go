package rhythm

import (
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

// Analyze handles POST /rhythm/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	rhythm, err := h.service.AnalyzeUserRhythm(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to analyze rhythm")
		return
	}

	if rhythm == nil {
		utils.RespondWithMessage(w, http.StatusAccepted, "Not enough activity data yet")
		return
	}

	utils.RespondWithData(w, http.StatusOK, rhythm)
}

// GetRhythm handles GET /rhythm
func (h *Handler) GetRhythm(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	rhythm, err := h.service.GetRhythm(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch rhythm")
		return
	}
	if rhythm == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No rhythm profile yet")
		return
	}

	utils.RespondWithData(w, http.StatusOK, rhythm)
}

// GetMirrorMatches handles GET /rhythm/mirror-matches
func (h *Handler) GetMirrorMatches(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	matches, err := h.service.FindMirrorMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to find mirror matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, matches)
}
