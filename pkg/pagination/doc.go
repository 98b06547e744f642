// Package pagination aggregates paged list sources into a single result.
//
// A list source answers (page, limit) with {total, list}. Aggregate walks the
// source one page at a time, memoizes every raw page in the response cache and
// normalizes each item, silently dropping items the normalizer rejects.
//
// Example usage:
//
//	plan := pagination.Plan{
//		Name:    "token-list",
//		Key:     func(page int) string { return key.WithPage(page).String() },
//		Limit:   50,
//		LoadAll: true,
//		TTL:     time.Minute,
//	}
//	res, err := pagination.Aggregate(ctx, cacheManager, plan, source.QueryTokenList, normalizer.Token)
//
// The aggregator:
//   - Fetches pages sequentially, never in parallel
//   - Stops as soon as a page reports total == 0
//   - Keeps the total reported by the first non-empty page
//   - Advances only in load-all mode and only after a full page
//   - Preserves source order (no re-sorting across pages)
//   - Fails with ErrNoEntries when nothing survives normalization
//
// Pages are cached only when Plan.TTL is positive.
package pagination
