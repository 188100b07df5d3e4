package ping

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers ping, match and chat routes on the
// authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/pings", handler.SendPing).Methods("POST")
	api.HandleFunc("/pings", handler.GetActivePings).Methods("GET")
	api.HandleFunc("/pings/{id}/accept", handler.AcceptPing).Methods("POST")
	api.HandleFunc("/pings/{id}/ignore", handler.IgnorePing).Methods("POST")
	api.HandleFunc("/matches", handler.GetActiveMatches).Methods("GET")
	api.HandleFunc("/matches/{id}/messages", handler.SendMessage).Methods("POST")
	api.HandleFunc("/matches/{id}/messages", handler.GetMessages).Methods("GET")
}
