// Package metrics exposes the Prometheus registry shared by the service.
// Collectors are defined in the packages that update them (api, cache,
// keypool, ledger, pagination) and register themselves through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer every collector is registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source scraped by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics of Gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// HTTP (pkg/api):
//   - tokenlist_http_requests_total{route, status} (Counter)
//   - tokenlist_http_request_duration_seconds{route} (Histogram)
//   - tokenlist_http_panics_total (Counter)
//
// Cache (pkg/cache):
//   - tokenlist_cache_hits_total (Counter)
//   - tokenlist_cache_misses_total (Counter)
//   - tokenlist_cache_bypass_total (Counter): lookups served without Redis
//   - tokenlist_cache_errors_total{operation} (Counter)
//
// Lease pool (pkg/keypool):
//   - tokenlist_keypool_acquire_total{result} (Counter): reused, grown, exhausted, degraded, error
//   - tokenlist_keypool_release_total (Counter)
//
// Access node (pkg/ledger):
//   - tokenlist_ledger_requests_total{script, status} (Counter)
//   - tokenlist_ledger_request_duration_seconds{script} (Histogram)
//   - tokenlist_ledger_errors_total{class} (Counter)
//   - tokenlist_ledger_retries_total{error_class} (Counter)
//   - tokenlist_ledger_retry_backoff_seconds{error_class} (Histogram)
//   - tokenlist_ledger_retry_exhausted_total{error_class} (Counter)
//   - tokenlist_ledger_endpoint_lease_fallback_total (Counter)
//
// Paginator (pkg/pagination):
//   - tokenlist_pagination_pages_total{list} (Counter)
//   - tokenlist_pagination_duration_seconds{list} (Histogram)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tokenlist_cache_hits_total[5m])) /
//   (sum(rate(tokenlist_cache_hits_total[5m])) + sum(rate(tokenlist_cache_misses_total[5m])))
//
//   # Pages walked per list request
//   rate(tokenlist_pagination_pages_total[5m]) / rate(tokenlist_pagination_duration_seconds_count[5m])
//
//   # Lease pool exhaustion
//   rate(tokenlist_keypool_acquire_total{result="exhausted"}[5m])
//
//   # P95 access node latency
//   histogram_quantile(0.95, rate(tokenlist_ledger_request_duration_seconds_bucket[5m]))
