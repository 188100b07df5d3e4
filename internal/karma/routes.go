package karma

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers karma routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/karma/balance", handler.GetBalance).Methods("GET")
	api.HandleFunc("/karma/help", handler.HelpNeighbor).Methods("POST")
	api.HandleFunc("/karma/request", handler.RequestHelp).Methods("POST")
	api.HandleFunc("/karma/emergency", handler.EmergencyHelp).Methods("POST")
	api.HandleFunc("/karma/history", handler.GetHistory).Methods("GET")
	api.HandleFunc("/karma/leaderboard", handler.GetLeaderboard).Methods("GET")
}
