// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer

	// Network is attached to every entry when set.
	Network string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Network != "" {
		ctx = ctx.Str("network", cfg.Network)
	}
	logger := ctx.Logger()

	log.Logger = logger
	return logger
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names are Info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger with a component field.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: page loop and cache traffic
//   - Cache hit/miss per key
//   - Every page fetched by the paginator
//   - Endpoint leases
//
// Info: normal operation
//   - Lists and reviewers served
//   - Server startup/shutdown
//
// Warn: degraded but serving
//   - Cache errors (bypass to the source)
//   - Lease pool unavailable or exhausted
//   - Access node retries
//   - 4xx responses
//
// Error: failed requests
//   - Upstream failures after retries
//   - Handler panics
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package
//   - list: token-list or nft-list
//   - reviewer, filter, evm: list query
//   - script, endpoint: access node call
//   - error_class: client, server, rate_limit, network, decode
//   - key: cache key
//   - req_id: request id from the access log
