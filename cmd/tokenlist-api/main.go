package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fixes-world/tokenlist-api/pkg/api"
	"github.com/fixes-world/tokenlist-api/pkg/cache"
	"github.com/fixes-world/tokenlist-api/pkg/config"
	"github.com/fixes-world/tokenlist-api/pkg/keypool"
	"github.com/fixes-world/tokenlist-api/pkg/ledger"
	"github.com/fixes-world/tokenlist-api/pkg/logging"
	"github.com/fixes-world/tokenlist-api/pkg/metrics"
	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

func main() {
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		log.Fatal().Str("code", cfgErr.Code).Msg(cfgErr.Message)
	}

	logging.Setup(logging.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Output:  os.Stderr,
		Network: string(cfg.Network),
	})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := connectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	scripts, err := ledger.LoadScripts(cfg.ScriptsDir)
	if err != nil {
		return fmt.Errorf("load cadence scripts: %w", err)
	}

	handler, err := buildHandler(cfg, redisClient, scripts)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Strs("access_nodes", cfg.AccessNodes).
			Bool("cache", redisClient != nil).
			Bool("cache_pages", cfg.CachePages).
			Msg("Starting token list API")
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-serverErrCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

// connectRedis returns nil when no REDIS_URL is configured.
func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, running without cache")
		return nil, nil
	}

	opts, err := cfg.RedisOptions()
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return redisClient, nil
}

// buildHandler wires the cache, lease pool, access node client, list
// service and HTTP routes. redisClient may be nil.
func buildHandler(cfg config.Config, redisClient *redis.Client, scripts *ledger.Scripts) (http.Handler, error) {
	namespace := cache.Namespace{Network: string(cfg.Network)}
	cacheManager := cache.NewManager(redisClient, namespace)
	pool := keypool.NewPool(redisClient, namespace, logging.NewLogger("keypool"))

	clientCfg := ledger.DefaultConfig(cfg.AccessNodes...)
	clientCfg.Timeout = cfg.UpstreamTimeout
	clientCfg.RateLimit = cfg.UpstreamRateLimit
	clientCfg.Retry.MaxAttempts = cfg.UpstreamMaxAttempts
	clientCfg.Pool = pool
	clientCfg.PoolOwner = cfg.KeyPoolOwner
	clientCfg.PoolLease = cfg.KeyPoolLease
	ledgerClient, err := ledger.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create access node client: %w", err)
	}

	service := tokenlist.NewService(
		ledger.NewSource(ledgerClient, scripts),
		cacheManager,
		tokenlist.ServiceConfig{
			Network:      cfg.Network,
			CachePages:   cfg.CachePages,
			ListTTL:      cfg.ListTTL,
			ReviewersTTL: cfg.ReviewersTTL,
		},
		logging.NewLogger("tokenlist"),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/api/", api.NewHandler(service, api.DefaultRequestTimeout, logging.NewLogger("api")).Routes())
	return mux, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports ready when Redis answers, or always without a cache.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Msg("Readiness check failed: redis unavailable")
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}
