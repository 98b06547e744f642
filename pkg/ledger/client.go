// Package ledger reads token and NFT lists from the Flow ledger by running
// Cadence scripts against the Flow Access REST API.
package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fixes-world/tokenlist-api/pkg/keypool"
)

// maxResponseBytes bounds the body read from an access node.
const maxResponseBytes = 32 << 20

// Config holds the client configuration.
type Config struct {
	// Endpoints are access node REST base URLs (e.g., "https://rest-mainnet.onflow.org")
	Endpoints []string

	// Timeout per HTTP request
	Timeout time.Duration

	// RateLimit is the request rate across all endpoints in requests per second (0 = unlimited)
	RateLimit float64
	Burst     int

	// Retry policy for server, rate limit and network errors
	Retry RetryConfig

	// Pool leases an endpoint index per execution when several endpoints are configured
	Pool      *keypool.Pool
	PoolOwner string
	PoolLease time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(endpoints ...string) Config {
	return Config{
		Endpoints: endpoints,
		Timeout:   30 * time.Second,
		RateLimit: 20,
		Burst:     10,
		Retry:     DefaultRetryConfig(),
		PoolLease: 30 * time.Second,
	}
}

// DefaultEndpoint returns the public access node of a network.
func DefaultEndpoint(network string) string {
	switch network {
	case "mainnet":
		return "https://rest-mainnet.onflow.org"
	case "testnet":
		return "https://rest-testnet.onflow.org"
	default:
		return "http://localhost:8888"
	}
}

// Client executes Cadence scripts on Flow access nodes.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new access node client.
func New(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	for i, e := range cfg.Endpoints {
		cfg.Endpoints[i] = strings.TrimRight(e, "/")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if len(cfg.Endpoints) > 1 && cfg.Pool != nil && cfg.PoolOwner == "" {
		return nil, fmt.Errorf("pool owner is required when leasing endpoints")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		config:     cfg,
		logger:     log.With().Str("component", "ledger-client").Logger(),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

type scriptRequest struct {
	Script    string   `json:"script"`
	Arguments []string `json:"arguments"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ExecuteScript runs a Cadence script at the latest sealed block and returns
// the decoded result (see Decode). name labels logs and metrics.
func (c *Client) ExecuteScript(ctx context.Context, name string, script []byte, args ...Value) (any, error) {
	startTime := time.Now()
	defer func() {
		RequestDuration.WithLabelValues(name).Observe(time.Since(startTime).Seconds())
	}()

	body, err := encodeScriptRequest(script, args)
	if err != nil {
		return nil, err
	}

	endpoint, release := c.leaseEndpoint(ctx)
	defer release()

	var payload []byte
	err = retryWithBackoff(ctx, c.config.Retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &AccessError{ErrorClass: ErrorClassClient, Message: "rate limiter wait", Err: err}
		}

		var reqErr error
		payload, reqErr = c.post(ctx, endpoint, body)
		if reqErr != nil {
			errClass := classOf(reqErr)
			ErrorsTotal.WithLabelValues(string(errClass)).Inc()
			RequestsTotal.WithLabelValues(name, string(errClass)).Inc()
			c.logger.Warn().
				Err(reqErr).
				Str("script", name).
				Str("endpoint", endpoint).
				Str("error_class", string(errClass)).
				Msg("Script execution failed")
			return reqErr
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}

	RequestsTotal.WithLabelValues(name, "ok").Inc()

	result, err := decodeScriptResponse(payload)
	if err != nil {
		ErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}

	c.logger.Debug().
		Str("script", name).
		Str("endpoint", endpoint).
		Dur("duration", time.Since(startTime)).
		Msg("Script executed")
	return result, nil
}

// post sends one script request and returns the raw response body.
func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint+"/v1/scripts?block_height=sealed", bytes.NewReader(body))
	if err != nil {
		return nil, &AccessError{ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AccessError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &AccessError{StatusCode: resp.StatusCode, ErrorClass: ErrorClassNetwork, Message: "read response", Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &AccessError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    errorMessage(resp.Status, data),
		}
	}
	return data, nil
}

// leaseEndpoint picks an access node. With several endpoints and a pool, the
// endpoint index is leased for the duration of the call.
func (c *Client) leaseEndpoint(ctx context.Context) (string, func()) {
	endpoints := c.config.Endpoints
	if len(endpoints) == 1 {
		return endpoints[0], func() {}
	}
	if c.config.Pool == nil {
		return endpoints[rand.IntN(len(endpoints))], func() {}
	}

	owner := c.config.PoolOwner
	index, err := c.config.Pool.Acquire(ctx, owner, len(endpoints), c.config.PoolLease)
	if err != nil {
		EndpointLeaseFallbackTotal.Inc()
		c.logger.Warn().Err(err).Str("owner", owner).Msg("Endpoint lease failed, using random access node")
		return endpoints[rand.IntN(len(endpoints))], func() {}
	}

	// Pools issued under a larger endpoint set may hand out stale indices
	endpoint := endpoints[index%len(endpoints)]
	return endpoint, func() {
		// The caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := c.config.Pool.Release(releaseCtx, owner, index); err != nil {
			c.logger.Warn().Err(err).Int("index", index).Msg("Failed to release endpoint lease")
		}
	}
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

func errorMessage(status string, body []byte) string {
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Message != "" {
		return ae.Message
	}
	return status
}

func encodeScriptRequest(script []byte, args []Value) ([]byte, error) {
	req := scriptRequest{
		Script:    base64.StdEncoding.EncodeToString(script),
		Arguments: make([]string, 0, len(args)),
	}
	for i, arg := range args {
		encoded, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode argument %d: %w", i, err)
		}
		req.Arguments = append(req.Arguments, base64.StdEncoding.EncodeToString(encoded))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode script request: %w", err)
	}
	return body, nil
}

// decodeScriptResponse unwraps the JSON string holding base64 JSON-Cadence.
func decodeScriptResponse(payload []byte) (any, error) {
	var encoded string
	if err := json.Unmarshal(payload, &encoded); err != nil {
		return nil, &AccessError{ErrorClass: ErrorClassDecode, Message: "script response is not a string", Err: err}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &AccessError{ErrorClass: ErrorClassDecode, Message: "script response is not base64", Err: err}
	}

	value, err := Decode(raw)
	if err != nil {
		return nil, &AccessError{ErrorClass: ErrorClassDecode, Message: "invalid json-cadence", Err: err}
	}
	return value, nil
}
