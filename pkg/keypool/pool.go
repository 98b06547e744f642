// Package keypool hands out rotating integer slot indices per owner address.
//
// Each owner has a bounded pool of slots in [0, capacity). A slot is leased
// for a fixed duration and becomes available again when it is released or
// when its lease expires. State lives in Redis so that every process sharing
// the same Redis sees the same pool:
//
//	<app>:SERVICE_POOL:<network>:ADDRESS:<owner>:KEY_VALUE   issued slot counter
//	<app>:SERVICE_POOL:<network>:ADDRESS:<owner>:SORTED_SET  slot -> available-at (unix ms)
//
// Without Redis the pool runs in degraded mode: Acquire returns a random
// index and Release does nothing. Exclusivity is not guaranteed there.
package keypool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fixes-world/tokenlist-api/pkg/cache"
)

// DefaultLease is used when Acquire is called without a lease duration.
const DefaultLease = 60 * time.Second

var (
	// ErrPoolExhausted is returned when every slot is leased and the pool is at capacity.
	ErrPoolExhausted = errors.New("key pool exhausted")

	// ErrInvalidCapacity is returned for a non-positive capacity.
	ErrInvalidCapacity = errors.New("key pool capacity must be positive")
)

// acquireScript leases one slot for an owner. Popping the soonest slot,
// checking its expiry, reserving or restoring it and growing the pool run as
// one atomic step, so a concurrent Release or Acquire can never be overwritten.
//
// KEYS[1] issued counter, KEYS[2] sorted set
// ARGV[1] capacity, ARGV[2] now (unix ms), ARGV[3] lease expiry (unix ms)
//
// Returns {outcome, index}: 1 reused, 2 grown, 0 exhausted.
var acquireScript = redis.NewScript(`
local popped = redis.call('ZPOPMIN', KEYS[2])
if popped[1] then
	if tonumber(popped[2]) <= tonumber(ARGV[2]) then
		redis.call('ZADD', KEYS[2], ARGV[3], popped[1])
		return {1, tonumber(popped[1])}
	end
	redis.call('ZADD', KEYS[2], popped[2], popped[1])
end
local issued = tonumber(redis.call('GET', KEYS[1]) or '0')
if issued >= tonumber(ARGV[1]) then
	return {0, -1}
end
redis.call('INCR', KEYS[1])
redis.call('ZADD', KEYS[2], ARGV[3], tostring(issued))
return {2, issued}
`)

const (
	outcomeExhausted = 0
	outcomeReused    = 1
	outcomeGrown     = 2
)

// Pool leases slot indices backed by Redis sorted sets.
type Pool struct {
	redis     *redis.Client
	namespace cache.Namespace
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPool creates a lease pool. A nil Redis client puts the pool in degraded mode.
func NewPool(redisClient *redis.Client, namespace cache.Namespace, logger zerolog.Logger) *Pool {
	return &Pool{
		redis:     redisClient,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
	}
}

// Degraded reports whether the pool runs without Redis.
func (p *Pool) Degraded() bool {
	return p.redis == nil
}

func (p *Pool) counterKey(owner string) string {
	return p.namespace.PoolKey(owner) + ":KEY_VALUE"
}

func (p *Pool) setKey(owner string) string {
	return p.namespace.PoolKey(owner) + ":SORTED_SET"
}

// Acquire leases a slot index for owner.
//
// The soonest-available slot is reused when its lease has expired. Otherwise
// a new slot is issued while fewer than capacity exist. A slot whose lease is
// still running is put back untouched and never handed out twice.
func (p *Pool) Acquire(ctx context.Context, owner string, capacity int, lease time.Duration) (int, error) {
	if capacity <= 0 {
		return 0, ErrInvalidCapacity
	}
	if lease <= 0 {
		lease = DefaultLease
	}

	if p.Degraded() {
		AcquireTotal.WithLabelValues("degraded").Inc()
		return rand.IntN(capacity), nil
	}

	now := p.now()
	res, err := acquireScript.Run(ctx, p.redis,
		[]string{p.counterKey(owner), p.setKey(owner)},
		capacity, now.UnixMilli(), now.Add(lease).UnixMilli(),
	).Int64Slice()
	if err == nil && len(res) != 2 {
		err = fmt.Errorf("unexpected script reply %v", res)
	}
	if err != nil {
		AcquireTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("acquire slot: %w", err)
	}

	index := int(res[1])
	switch res[0] {
	case outcomeReused:
		AcquireTotal.WithLabelValues("reused").Inc()
		p.logger.Debug().Str("owner", owner).Int("index", index).Msg("Reused lease slot")
		return index, nil
	case outcomeGrown:
		AcquireTotal.WithLabelValues("grown").Inc()
		p.logger.Debug().Str("owner", owner).Int("index", index).Msg("Issued new lease slot")
		return index, nil
	case outcomeExhausted:
		AcquireTotal.WithLabelValues("exhausted").Inc()
		p.logger.Warn().Str("owner", owner).Int("capacity", capacity).Msg("Key pool exhausted")
		return 0, ErrPoolExhausted
	default:
		AcquireTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("acquire slot: unexpected outcome %d", res[0])
	}
}

// Release makes a slot available immediately. Releasing an available slot
// only refreshes its score.
func (p *Pool) Release(ctx context.Context, owner string, index int) error {
	if p.Degraded() {
		return nil
	}

	member := strconv.Itoa(index)
	if err := p.redis.ZAdd(ctx, p.setKey(owner), redis.Z{Score: float64(p.now().UnixMilli()), Member: member}).Err(); err != nil {
		return fmt.Errorf("release slot %d: %w", index, err)
	}

	ReleaseTotal.Inc()
	return nil
}
