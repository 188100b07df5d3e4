package activity

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers activity routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/location/sample", handler.RecordSample).Methods("POST")
	api.HandleFunc("/location/last", handler.GetLastLocation).Methods("GET")
	api.HandleFunc("/location/stop", handler.StopTracking).Methods("POST")
	api.HandleFunc("/activity/current", handler.GetCurrentActivity).Methods("GET")
}
