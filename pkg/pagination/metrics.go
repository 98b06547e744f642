package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks pages loaded per list, from cache or source
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenlist_pagination_pages_total",
			Help: "Total number of list pages loaded during aggregation",
		},
		[]string{"list"},
	)

	// AggregateDuration tracks the wall time of a full aggregation
	AggregateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokenlist_pagination_duration_seconds",
			Help:    "Duration of list aggregation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"list"},
	)
)
