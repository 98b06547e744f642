package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fixes-world/tokenlist-api/pkg/cache"
)

// ErrNoEntries is returned when an aggregation yields no normalized item.
var ErrNoEntries = errors.New("no entries found")

// Page is one page of a list source. Total is the source's authoritative count.
type Page[T any] struct {
	Total int `json:"total"`
	List  []T `json:"list"`
}

// Fetcher loads a single page from a list source.
type Fetcher[T any] func(ctx context.Context, page, limit int) (*Page[T], error)

// Plan describes one aggregation run.
type Plan struct {
	// Name labels logs and metrics (e.g., "token-list")
	Name string

	// Key builds the cache method key for a page. Required when TTL > 0.
	Key func(page int) string

	// StartPage is the first page to load (0-based)
	StartPage int

	// Limit is the page size requested from the source
	Limit int

	// LoadAll keeps walking pages until a short or empty page
	LoadAll bool

	// TTL caches each raw page for this long. Zero disables page caching.
	TTL time.Duration
}

// Result holds the aggregated items.
type Result[R any] struct {
	Items []R

	// Total is the count reported by the first non-empty page
	Total int

	// Pages is the number of pages loaded
	Pages int
}

// Aggregate walks the source sequentially from plan.StartPage and normalizes
// every item. Items rejected by normalize are dropped. A fetch error aborts
// the whole run; nothing is retried here.
func Aggregate[T, R any](ctx context.Context, cm *cache.Manager, plan Plan, fetch Fetcher[T], normalize func(T) (R, bool)) (*Result[R], error) {
	start := time.Now()
	defer func() {
		AggregateDuration.WithLabelValues(plan.Name).Observe(time.Since(start).Seconds())
	}()

	result := &Result[R]{Items: make([]R, 0)}
	totalSeen := false
	page := plan.StartPage

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := loadPage(ctx, cm, plan, fetch, page)
		if err != nil {
			return nil, fmt.Errorf("load %s page %d: %w", plan.Name, page, err)
		}
		result.Pages++
		PagesFetched.WithLabelValues(plan.Name).Inc()

		if raw == nil || raw.Total == 0 {
			log.Debug().Str("list", plan.Name).Int("page", page).Msg("Source reported no entries")
			break
		}
		if !totalSeen {
			result.Total = raw.Total
			totalSeen = true
		}

		dropped := 0
		for _, item := range raw.List {
			if out, ok := normalize(item); ok {
				result.Items = append(result.Items, out)
			} else {
				dropped++
			}
		}

		log.Debug().
			Str("list", plan.Name).
			Int("page", page).
			Int("items", len(raw.List)).
			Int("dropped", dropped).
			Msg("Page aggregated")

		// A short or empty page is the last one
		if !plan.LoadAll || len(raw.List) == 0 || len(raw.List) < plan.Limit {
			break
		}
		page++
	}

	if len(result.Items) == 0 {
		return nil, ErrNoEntries
	}

	log.Debug().
		Str("list", plan.Name).
		Int("pages", result.Pages).
		Int("items", len(result.Items)).
		Int("total", result.Total).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")

	return result, nil
}

func loadPage[T any](ctx context.Context, cm *cache.Manager, plan Plan, fetch Fetcher[T], page int) (*Page[T], error) {
	load := func(ctx context.Context) (*Page[T], error) {
		return fetch(ctx, page, plan.Limit)
	}

	if plan.TTL <= 0 || plan.Key == nil {
		return load(ctx)
	}
	return cache.Cached(ctx, cm, plan.Key(page), plan.TTL, load)
}
