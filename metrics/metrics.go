package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	betsPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bets_placed_total",
			Help: "Total bet placements by result and bet_type",
		},
		[]string{"result", "bet_type"},
	)

	draws = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draws_total",
			Help: "Total draws by result and size outcome",
		},
		[]string{"result", "size"},
	)

	betsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bets_settled_total",
			Help: "Total settled bets by outcome (won, lost, refunded, failed)",
		},
		[]string{"outcome"},
	)

	settlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_ms",
			Help:    "Per-game settlement duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
	)
)

// RecordBetPlaced records a bet placement attempt.
// result should be "success" or "fail".
func RecordBetPlaced(result, betType string) {
	if result != "success" {
		result = "fail"
	}
	betsPlaced.WithLabelValues(result, betType).Inc()
}

// RecordDraw records a draw attempt. size is empty on failure.
func RecordDraw(result, size string) {
	if result != "success" {
		result = "fail"
	}
	if size == "" {
		size = "unknown"
	}
	draws.WithLabelValues(result, size).Inc()
}

// RecordBetSettled records one resolved (or failed) bet during settlement.
func RecordBetSettled(outcome string) {
	betsSettled.WithLabelValues(outcome).Inc()
}

// RecordSettlement records the duration of one settlement batch.
func RecordSettlement(started time.Time) {
	settlementDuration.Observe(float64(time.Since(started).Milliseconds()))
}
