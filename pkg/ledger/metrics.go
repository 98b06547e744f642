package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for access node operations.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlist_ledger_requests_total",
		Help: "Total script executions by script and status",
	}, []string{"script", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokenlist_ledger_request_duration_seconds",
		Help:    "Script execution duration in seconds by script",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"script"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlist_ledger_errors_total",
		Help: "Total access node errors by class",
	}, []string{"class"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlist_ledger_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	RetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokenlist_ledger_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"error_class"})

	RetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlist_ledger_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	EndpointLeaseFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenlist_ledger_endpoint_lease_fallback_total",
		Help: "Total number of executions that fell back to a random access node",
	})
)
