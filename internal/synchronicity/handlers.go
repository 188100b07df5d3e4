package synchronicity

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	service Service
	scanner *Scanner
}

func NewHandler(service Service, scanner *Scanner) *Handler {
	return &Handler{service: service, scanner: scanner}
}

// StartScanning handles POST /synchronicity/scan/start
func (h *Handler) StartScanning(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	h.scanner.Start(userID)

	utils.RespondWithMessage(w, http.StatusOK, "Scanning started")
}

// StopScanning handles POST /synchronicity/scan/stop
func (h *Handler) StopScanning(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	h.scanner.Stop(userID)

	utils.RespondWithMessage(w, http.StatusOK, "Scanning stopped")
}

// GetStatus handles GET /synchronicity/scan/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	utils.RespondWithData(w, http.StatusOK, map[string]bool{
		"scanning": h.scanner.IsScanning(userID),
	})
}

// GetSynchronicities handles GET /synchronicities
func (h *Handler) GetSynchronicities(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	records, err := h.service.GetForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch synchronicities")
		return
	}

	utils.RespondWithData(w, http.StatusOK, records)
}

// MarkNotified handles POST /synchronicities/{id}/notified
func (h *Handler) MarkNotified(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.MarkNotified(r.Context(), id); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to mark notified")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Marked as notified")
}
