package rhythm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_rhythm_analyses_total",
		Help: "Total number of rhythm profiles computed, by rhythm type",
	}, []string{"rhythm_type"})

	mirrorMatchCounts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spontan_rhythm_mirror_matches",
		Help:    "Number of mirror matches returned per lookup",
		Buckets: []float64{0, 1, 2, 5, 10, 25},
	})
)

func RecordAnalysis(rhythmType string) {
	analysesTotal.WithLabelValues(rhythmType).Inc()
}

func RecordMirrorMatches(count int) {
	mirrorMatchCounts.Observe(float64(count))
}
