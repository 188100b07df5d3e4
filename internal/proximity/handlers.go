package proximity

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/spontanapp/spontan-backend/internal/auth"
	"github.com/spontanapp/spontan-backend/internal/common/utils"
)

type Handler struct {
	matcher       Matcher
	browseRadiusM float64
}

func NewHandler(matcher Matcher, browseRadiusM float64) *Handler {
	if browseRadiusM <= 0 {
		browseRadiusM = 2000
	}
	return &Handler{matcher: matcher, browseRadiusM: browseRadiusM}
}

// GetNearby handles GET /proximity/nearby?lat=&lon=&radius_m=
func (h *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

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

	radius := h.browseRadiusM
	if raw := r.URL.Query().Get("radius_m"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 || radius > h.browseRadiusM {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius_m parameter")
			return
		}
	}

	users, err := h.matcher.FindNearbyUsers(r.Context(), userID, lat, lon, radius)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to find nearby users")
		return
	}

	utils.RespondWithData(w, http.StatusOK, users)
}

// RegisterRoutes registers proximity routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/proximity/nearby", handler.GetNearby).Methods("GET")
}
