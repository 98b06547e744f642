// Package cache provides the response cache used by the token list API.
//
// The cache is an optional optimization layered over Redis. When no Redis
// client is configured, every lookup falls through to the producer and the
// service keeps working with direct ledger queries.
//
// # Keys
//
// All keys live under a Namespace made of the application name and the
// Flow network:
//
//	TokenListAPI:SERVICE_CACHE:mainnet:KEY_VALUE:<method key>
//	TokenListAPI:SERVICE_POOL:mainnet:ADDRESS:<owner>
//
// Paged list queries build their method key with PageKey, which includes
// every query parameter so distinct queries never share an entry.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, cache.Namespace{Network: "mainnet"})
//
//	reviewers, err := cache.Cached(ctx, manager, "reviewers/", time.Hour,
//		func(ctx context.Context) ([]tokenlist.ReviewerInfo, error) {
//			return source.Reviewers(ctx)
//		})
//
// Entries expire through the Redis TTL and are never deleted explicitly.
// Concurrent misses on the same key are not coalesced: every caller runs
// the producer and the last write wins.
//
// # Metrics
//
//   - tokenlist_cache_hits_total - Cache hits
//   - tokenlist_cache_misses_total - Cache misses
//   - tokenlist_cache_bypass_total - Lookups served without Redis
//   - tokenlist_cache_errors_total{operation} - Redis errors by operation
package cache
