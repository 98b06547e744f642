package keypool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AcquireTotal tracks slot acquisitions by outcome
	AcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenlist_keypool_acquire_total",
			Help: "Total number of lease slot acquisitions",
		},
		[]string{"result"}, // "reused", "grown", "exhausted", "degraded", "error"
	)

	// ReleaseTotal tracks slot releases
	ReleaseTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenlist_keypool_release_total",
			Help: "Total number of lease slot releases",
		},
	)
)
