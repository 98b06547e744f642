package cache

import (
	"fmt"
	"strings"
)

// DefaultApp is the application segment used when Namespace.App is empty.
const DefaultApp = "TokenListAPI"

// Namespace scopes cache and pool keys to one application and network.
type Namespace struct {
	// App is the application name (default: TokenListAPI)
	App string

	// Network is the Flow network the data was read from (e.g., "mainnet")
	Network string
}

func (n Namespace) app() string {
	if n.App == "" {
		return DefaultApp
	}
	return n.App
}

// CacheKey returns the Redis key for a cached method result.
// Format: <app>:SERVICE_CACHE:<network>:KEY_VALUE:<method>
func (n Namespace) CacheKey(method string) string {
	return fmt.Sprintf("%s:SERVICE_CACHE:%s:KEY_VALUE:%s", n.app(), n.Network, method)
}

// PoolKey returns the key prefix for an owner's lease pool.
// Format: <app>:SERVICE_POOL:<network>:ADDRESS:<owner>
func (n Namespace) PoolKey(owner string) string {
	return fmt.Sprintf("%s:SERVICE_POOL:%s:ADDRESS:%s", n.app(), n.Network, owner)
}

// PageKey identifies one page of a list query.
type PageKey struct {
	// Method is the list name (e.g., "token-list")
	Method string

	// Reviewer is the curator address, empty when the query is unfiltered
	Reviewer string

	Filter  int
	Page    int
	Limit   int
	EVMOnly bool
}

// String generates a deterministic method key for the page.
//
// Example:
//
//	token-list/?reviewer=0x15a918087ab12d86&filter=3&page=0&limit=50&evm=false
func (k PageKey) String() string {
	var b strings.Builder
	b.WriteString(strings.Trim(k.Method, "/"))
	b.WriteString("/?")
	fmt.Fprintf(&b, "reviewer=%s", k.Reviewer)
	fmt.Fprintf(&b, "&filter=%d", k.Filter)
	fmt.Fprintf(&b, "&page=%d", k.Page)
	fmt.Fprintf(&b, "&limit=%d", k.Limit)
	fmt.Fprintf(&b, "&evm=%t", k.EVMOnly)
	return b.String()
}

// WithPage returns a copy of the key pointing at another page.
func (k PageKey) WithPage(page int) PageKey {
	k.Page = page
	return k
}
