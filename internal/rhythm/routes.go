package rhythm

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers rhythm routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/rhythm/analyze", handler.Analyze).Methods("POST")
	api.HandleFunc("/rhythm", handler.GetRhythm).Methods("GET")
	api.HandleFunc("/rhythm/mirror-matches", handler.GetMirrorMatches).Methods("GET")
}
