package lobby

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetNearby handles GET /lobbies/nearby?lat=&lon=&radius_km=
func (h *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid lat parameter")
		return
	}

	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid lon parameter")
		return
	}

	radiusKm := 0.0
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius_km parameter")
			return
		}
	}

	lobbies, err := h.service.GetAutoLobbiesNearby(r.Context(), lat, lon, radiusKm)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch lobbies")
		return
	}

	utils.RespondWithData(w, http.StatusOK, lobbies)
}

// GetLobby handles GET /lobbies/{id}
func (h *Handler) GetLobby(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	lobby, err := h.service.GetLobby(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch lobby")
		return
	}
	if lobby == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Lobby not found")
		return
	}

	utils.RespondWithData(w, http.StatusOK, lobby)
}
