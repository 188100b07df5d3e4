// internal/synchronicity/metrics.go

package synchronicity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spontan_synchronicity_scans_total",
		Help: "Total number of proximity scan cycles executed",
	})

	scanMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spontan_synchronicity_scan_matches",
		Help:    "Number of same-activity users found per scan",
		Buckets: []float64{0, 1, 2, 3, 5, 10},
	})

	synchronicitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spontan_synchronicities_created_total",
		Help: "Total number of synchronicity records created",
	})

	syncScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spontan_synchronicity_scores",
		Help:    "Distribution of synchronicity scores at creation",
		Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spontan_synchronicity_active_scan_sessions",
		Help: "Number of users with a running scan session",
	})
)

// RecordScan records one completed scan cycle and how many same-activity
// users it found.
func RecordScan(matches int) {
	scansTotal.Inc()
	scanMatches.Observe(float64(matches))
}

// RecordSynchronicity records a newly created synchronicity.
func RecordSynchronicity(score float64) {
	synchronicitiesTotal.Inc()
	syncScores.Observe(score)
}

// SetActiveSessions tracks the number of live scan sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
