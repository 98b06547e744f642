// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixes-world/tokenlist-api/pkg/cache"
	"github.com/fixes-world/tokenlist-api/pkg/ledger"
	"github.com/fixes-world/tokenlist-api/pkg/logging"
	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

const (
	defaultPort                = "8080"
	defaultNetwork             = tokenlist.NetworkEmulator
	defaultScriptsDir          = "cadence/scripts"
	defaultShutdownTimeout     = 10 * time.Second
	defaultUpstreamTimeout     = 30 * time.Second
	defaultUpstreamMaxAttempts = 3
	defaultUpstreamRateLimit   = 20.0
	defaultKeyPoolLease        = 30 * time.Second
)

// defaultPoolOwners are the list contract accounts per network.
var defaultPoolOwners = map[tokenlist.Network]string{
	tokenlist.NetworkEmulator: "0xf8d6e0586b0a20c7",
	tokenlist.NetworkTestnet:  "0xb86f928a1fa7798e",
	tokenlist.NetworkMainnet:  "0x15a918087ab12d86",
}

// ConfigError is an invalid or missing environment setting.
type ConfigError struct {
	Code    string
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Config holds the service configuration.
type Config struct {
	Port    string
	Network tokenlist.Network

	// AccessNodes are Flow Access REST endpoints (default: the network's public node)
	AccessNodes []string
	ScriptsDir  string

	// RedisURL is a redis:// URL or host:port; empty disables caching
	RedisURL     string
	CachePages   bool
	ListTTL      time.Duration
	ReviewersTTL time.Duration

	LogLevel  logging.LogLevel
	LogPretty bool

	ShutdownTimeout     time.Duration
	UpstreamTimeout     time.Duration
	UpstreamMaxAttempts int
	UpstreamRateLimit   float64

	KeyPoolOwner string
	KeyPoolLease time.Duration
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, *ConfigError) {
	network := defaultNetwork
	if raw := strings.TrimSpace(os.Getenv("FLOW_NETWORK")); raw != "" {
		parsed, err := tokenlist.ParseNetwork(raw)
		if err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_FLOW_NETWORK_INVALID",
				Message: "FLOW_NETWORK must be one of emulator, testnet or mainnet",
			}
		}
		network = parsed
	}

	cfg := Config{
		Port:                getEnv("PORT", defaultPort),
		Network:             network,
		AccessNodes:         splitList(os.Getenv("FLOW_ACCESS_NODES")),
		ScriptsDir:          getEnv("CADENCE_SCRIPTS_DIR", defaultScriptsDir),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		CachePages:          network == tokenlist.NetworkMainnet,
		ListTTL:             cache.DefaultTTL,
		ReviewersTTL:        tokenlist.DefaultReviewersTTL,
		LogLevel:            logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo))),
		ShutdownTimeout:     defaultShutdownTimeout,
		UpstreamTimeout:     defaultUpstreamTimeout,
		UpstreamMaxAttempts: defaultUpstreamMaxAttempts,
		UpstreamRateLimit:   defaultUpstreamRateLimit,
		KeyPoolOwner:        getEnv("KEY_POOL_OWNER", defaultPoolOwners[network]),
		KeyPoolLease:        defaultKeyPoolLease,
	}
	if len(cfg.AccessNodes) == 0 {
		cfg.AccessNodes = []string{ledger.DefaultEndpoint(string(network))}
	}

	var err *ConfigError
	if cfg.CachePages, err = parseBool("CACHE_LIST_PAGES", cfg.CachePages); err != nil {
		return Config{}, err
	}
	if cfg.LogPretty, err = parseBool("LOG_PRETTY", false); err != nil {
		return Config{}, err
	}
	if cfg.ListTTL, err = parseDuration("LIST_CACHE_TTL", cfg.ListTTL); err != nil {
		return Config{}, err
	}
	if cfg.ReviewersTTL, err = parseDuration("REVIEWERS_CACHE_TTL", cfg.ReviewersTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamTimeout, err = parseDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout); err != nil {
		return Config{}, err
	}
	if cfg.KeyPoolLease, err = parseDuration("KEY_POOL_LEASE", cfg.KeyPoolLease); err != nil {
		return Config{}, err
	}

	if raw := strings.TrimSpace(os.Getenv("UPSTREAM_MAX_ATTEMPTS")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			return Config{}, &ConfigError{
				Code:    "CONFIG_UPSTREAM_MAX_ATTEMPTS_INVALID",
				Message: "UPSTREAM_MAX_ATTEMPTS must be a positive integer",
			}
		}
		cfg.UpstreamMaxAttempts = n
	}

	if raw := strings.TrimSpace(os.Getenv("UPSTREAM_RATE_LIMIT")); raw != "" {
		f, convErr := strconv.ParseFloat(raw, 64)
		if convErr != nil || f < 0 {
			return Config{}, &ConfigError{
				Code:    "CONFIG_UPSTREAM_RATE_LIMIT_INVALID",
				Message: "UPSTREAM_RATE_LIMIT must be a non-negative number",
			}
		}
		cfg.UpstreamRateLimit = f
	}

	if cfg.RedisURL != "" {
		if _, err := cfg.RedisOptions(); err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_REDIS_URL_INVALID",
				Message: "REDIS_URL is invalid",
			}
		}
	}

	return cfg, nil
}

// Address returns the HTTP listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// RedisOptions returns client options for RedisURL. A bare host:port is
// accepted as well as a redis:// or rediss:// URL.
func (c Config) RedisOptions() (*redis.Options, error) {
	if strings.Contains(c.RedisURL, "://") {
		return redis.ParseURL(c.RedisURL)
	}
	return &redis.Options{Addr: c.RedisURL}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(key string, defaultValue bool) (bool, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ConfigError{
			Code:    "CONFIG_" + key + "_INVALID",
			Message: key + " must be a boolean",
		}
	}
	return b, nil
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, &ConfigError{
			Code:    "CONFIG_" + key + "_INVALID",
			Message: key + " must be a positive duration (e.g. 60s)",
		}
	}
	return d, nil
}
