package lobby

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers lobby routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/lobbies/nearby", handler.GetNearby).Methods("GET")
	api.HandleFunc("/lobbies/{id}", handler.GetLobby).Methods("GET")
}
