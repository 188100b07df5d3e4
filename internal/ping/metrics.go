package ping

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pingsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_pings_sent_total",
		Help: "Total number of pings sent, by activity",
	}, []string{"activity"})

	matchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_matches_created_total",
		Help: "Total number of matches created from accepted pings, by activity",
	}, []string{"activity"})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spontan_chat_messages_total",
		Help: "Total number of chat messages sent",
	})

	pingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spontan_pings_expired_total",
		Help: "Total number of pings retired by the expiry sweep",
	})
)

func RecordPingSent(activity string) {
	pingsSent.WithLabelValues(activity).Inc()
}

func RecordMatch(activity string) {
	matchesCreated.WithLabelValues(activity).Inc()
}

func RecordMessage() {
	messagesSent.Inc()
}

func RecordPingsExpired(count int64) {
	pingsExpired.Add(float64(count))
}
