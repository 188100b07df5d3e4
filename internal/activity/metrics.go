package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_samples_total",
			Help: "Total number of location samples ingested",
		},
	)

	observationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_observations_total",
			Help: "Total number of persisted activity observations",
		},
		[]string{"activity_type"},
	)
)

func RecordSampleIngested() {
	samplesTotal.Inc()
}

func RecordObservation(activityType string) {
	observationsTotal.WithLabelValues(activityType).Inc()
}
