package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenlist_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenlist_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheBypass tracks lookups served directly because no Redis is configured
	CacheBypass = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenlist_cache_bypass_total",
			Help: "Total number of lookups that bypassed the disabled cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenlist_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "decode", "encode"
	)
)
