package lobby

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lobbiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_auto_lobbies_created_total",
		Help: "Total number of auto-generated lobbies created, by lobby type",
	}, []string{"lobby_type"})

	lobbiesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_auto_lobbies_resolved_total",
		Help: "Auto-generated lobbies resolved by the start sweep, by outcome",
	}, []string{"outcome"})
)

func RecordLobbyCreated(lobbyType string) {
	lobbiesCreated.WithLabelValues(lobbyType).Inc()
}

func RecordLobbyResolved(outcome string) {
	lobbiesResolved.WithLabelValues(outcome).Inc()
}
