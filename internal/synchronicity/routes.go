package synchronicity

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers synchronicity routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/synchronicity/scan/start", handler.StartScanning).Methods("POST")
	api.HandleFunc("/synchronicity/scan/stop", handler.StopScanning).Methods("POST")
	api.HandleFunc("/synchronicity/scan/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/synchronicities", handler.GetSynchronicities).Methods("GET")
	api.HandleFunc("/synchronicities/{id}/notified", handler.MarkNotified).Methods("POST")
}
