package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the HTTP surface.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlist_http_requests_total",
		Help: "Total API requests by route and status code",
	}, []string{"route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokenlist_http_request_duration_seconds",
		Help:    "API request duration in seconds by route",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"route"})

	PanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenlist_http_panics_total",
		Help: "Total handler panics recovered",
	})
)
