package karma

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_karma_transactions_total",
		Help: "Total number of karma ledger entries, by transaction type",
	}, []string{"transaction_type"})

	karmaFlow = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spontan_karma_points_total",
		Help: "Absolute karma points moved, by direction",
	}, []string{"direction"})
)

func RecordTransaction(txType string, amount int) {
	transactionsTotal.WithLabelValues(txType).Inc()

	if amount >= 0 {
		karmaFlow.WithLabelValues("credit").Add(float64(amount))
	} else {
		karmaFlow.WithLabelValues("debit").Add(float64(-amount))
	}
}
