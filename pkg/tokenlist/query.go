package tokenlist

import (
	"regexp"
)

const (
	defaultLimit    = 50
	maxLimit        = 200
	defaultEVMLimit = 15
	maxEVMLimit     = 30
)

var reviewerPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{16}$`)

// Query is a request for a token or NFT list.
type Query struct {
	Category Category
	Reviewer string
	Filter   FilterType
	EVMOnly  bool

	// Page and Limit are nil when absent from the request
	Page  *int
	Limit *int
}

// Validate checks the reviewer address shape and the filter range.
func (q Query) Validate() error {
	if q.Reviewer != "" && !reviewerPattern.MatchString(q.Reviewer) {
		return invalidInput("The reviewer address is invalid")
	}
	if q.Filter < FilterAll || q.Filter > q.Category.MaxFilter() {
		return invalidInput("The filter type is invalid")
	}
	return nil
}

// LoadAll reports whether the whole list was requested.
func (q Query) LoadAll() bool {
	return q.Page == nil && q.Limit == nil
}

// EffectiveLimit returns the page size sent to the source.
func (q Query) EffectiveLimit() int {
	fallback, ceiling := defaultLimit, maxLimit
	if q.EVMOnly {
		fallback, ceiling = defaultEVMLimit, maxEVMLimit
	}

	if q.Limit == nil {
		return fallback
	}
	// abs(math.MinInt) stays negative
	limit := abs(*q.Limit)
	if limit <= 0 {
		return fallback
	}
	return min(limit, ceiling)
}

// StartPage returns the first page to load.
func (q Query) StartPage() int {
	if q.Page == nil {
		return 0
	}
	return max(abs(*q.Page), 0)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
