package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTTL is used when a caller stores an entry without a TTL
	DefaultTTL = 60 * time.Second
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled is returned by Get and Set when no Redis client is configured
	ErrCacheDisabled = errors.New("cache disabled")

	// ErrEncode indicates a produced value could not be serialized for caching
	ErrEncode = errors.New("encode cache entry")
)

// Manager handles caching operations with an optional Redis backend.
type Manager struct {
	redis     *redis.Client
	namespace Namespace
	logger    zerolog.Logger
}

// NewManager creates a new cache manager.
// A nil Redis client produces a disabled manager that bypasses every lookup.
func NewManager(redisClient *redis.Client, namespace Namespace) *Manager {
	return &Manager{
		redis:     redisClient,
		namespace: namespace,
		logger:    log.With().Str("component", "cache").Logger(),
	}
}

// Enabled reports whether a Redis backend is configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.redis != nil
}

// Namespace returns the key namespace of the manager.
func (m *Manager) Namespace() Namespace {
	return m.namespace
}

// Get retrieves the raw cached payload for a method key.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, method string) (string, error) {
	if !m.Enabled() {
		return "", ErrCacheDisabled
	}

	key := m.namespace.CacheKey(method)
	data, err := m.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			m.logger.Debug().Str("key", key).Msg("Cache miss")
			return "", ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}

	CacheHits.Inc()
	m.logger.Debug().Str("key", key).Msg("Cache hit")
	return data, nil
}

// Set stores a raw payload under a method key.
// The entry is removed by Redis when the TTL elapses.
func (m *Manager) Set(ctx context.Context, method, payload string, ttl time.Duration) error {
	if !m.Enabled() {
		return ErrCacheDisabled
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	key := m.namespace.CacheKey(method)
	if err := m.redis.Set(ctx, key, payload, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	m.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached result")
	return nil
}

// Delete removes a cache entry. Request paths never call it; entries there
// only expire by TTL. It exists for operator tooling and tests.
func (m *Manager) Delete(ctx context.Context, method string) error {
	if !m.Enabled() {
		return ErrCacheDisabled
	}

	if err := m.redis.Del(ctx, m.namespace.CacheKey(method)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Cached returns the value stored under method, or runs produce and stores
// its result for ttl (DefaultTTL when ttl <= 0).
//
// Redis failures never fail the call: they are logged and the producer runs
// as if the entry were missing. Only producer errors and values that cannot
// be serialized are returned to the caller. A freshly produced value is
// returned as-is and never re-read from Redis.
func Cached[T any](ctx context.Context, m *Manager, method string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	if !m.Enabled() {
		CacheBypass.Inc()
		return produce(ctx)
	}

	raw, err := m.Get(ctx, method)
	switch {
	case err == nil:
		if value, ok := decode[T](raw); ok {
			return value, nil
		}
		CacheErrors.WithLabelValues("decode").Inc()
		m.logger.Warn().Str("method", method).Msg("Undecodable cache entry, reloading")
	case !errors.Is(err, ErrCacheMiss):
		m.logger.Warn().Err(err).Str("method", method).Msg("Cache get error, loading from source")
	}

	value, err := produce(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	payload, err := encode(value)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if err := m.Set(ctx, method, payload, ttl); err != nil {
		m.logger.Warn().Err(err).Str("method", method).Msg("Failed to cache result")
	}

	return value, nil
}

// decode parses a cached payload as JSON. String targets fall back to the
// raw payload when it is not a JSON string literal.
func decode[T any](raw string) (T, bool) {
	var value T
	if s, ok := any(&value).(*string); ok {
		if len(raw) > 0 && raw[0] == '"' && json.Unmarshal([]byte(raw), s) == nil {
			return value, true
		}
		*s = raw
		return value, true
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, false
	}
	return value, true
}

// encode serializes a value for storage. Strings are stored unchanged.
func encode(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
