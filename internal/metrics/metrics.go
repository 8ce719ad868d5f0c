// Package metrics holds the domain-level Prometheus collectors of the
// library service. HTTP-level metrics live in the middleware package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "operation" label.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSearch = "search"
	OpExists = "exists"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

var (
	bookOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_book_operations_total",
			Help: "Total number of book catalog operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	aiInsightDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_ai_insight_duration_seconds",
			Help:    "Duration of tagline generation calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)
)

// RecordOperation increments the counter for a book operation.
func RecordOperation(operation, outcome string) {
	bookOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveInsight records the latency of one tagline generation call.
func ObserveInsight(start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	aiInsightDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
