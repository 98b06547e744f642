//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestCached_Integration_RoundTrip(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	manager := NewManager(client, Namespace{Network: "mainnet"})
	ctx := context.Background()

	calls := 0
	produce := func(context.Context) (*page, error) {
		calls++
		return &page{Total: 3, List: []string{"a", "b", "c"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Cached(ctx, manager, "token-list/?page=0", time.Minute, produce)
		if err != nil {
			t.Fatalf("Cached() error = %v", err)
		}
		if got.Total != 3 || len(got.List) != 3 {
			t.Errorf("Cached() = %+v", got)
		}
	}

	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}

	ttl, err := client.TTL(ctx, manager.Namespace().CacheKey("token-list/?page=0")).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}
}
