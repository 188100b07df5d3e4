package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spontan_websocket_clients",
		Help: "Number of connected websocket clients",
	})

	eventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_websocket_events_total",
		Help: "Total number of events delivered over websockets, by type",
	}, []string{"event_type"})
)

func SetConnectedClients(n int) {
	connectedClients.Set(float64(n))
}

func RecordEventDelivered(eventType string) {
	eventsDelivered.WithLabelValues(eventType).Inc()
}
