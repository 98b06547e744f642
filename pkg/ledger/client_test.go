package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixes-world/tokenlist-api/internal/testutil"
	"github.com/fixes-world/tokenlist-api/pkg/cache"
	"github.com/fixes-world/tokenlist-api/pkg/keypool"
)

const testScript = "access(all) fun main(): Int { return 1 }"

func newTestClient(t *testing.T, endpoints ...string) *Client {
	t.Helper()

	cfg := DefaultConfig(endpoints...)
	cfg.RateLimit = 0
	cfg.Retry = fastRetry(3)
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoEndpoints)

	_, err = New(Config{
		Endpoints: []string{"http://a", "http://b"},
		Pool:      &keypool.Pool{},
	})
	assert.Error(t, err)

	c, err := New(Config{Endpoints: []string{"http://a/"}})
	require.NoError(t, err)
	assert.Equal(t, "http://a", c.config.Endpoints[0])
	assert.Equal(t, 30*time.Second, c.config.Timeout)
	assert.Equal(t, DefaultRetryConfig(), c.config.Retry)
}

func TestDefaultEndpoint(t *testing.T) {
	assert.Equal(t, "https://rest-mainnet.onflow.org", DefaultEndpoint("mainnet"))
	assert.Equal(t, "https://rest-testnet.onflow.org", DefaultEndpoint("testnet"))
	assert.Equal(t, "http://localhost:8888", DefaultEndpoint("emulator"))
}

func TestExecuteScript_Success(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetResponse(testScript, testutil.NewScriptResult(
		testutil.CStruct("s.Result",
			testutil.Field{Name: "total", Value: testutil.CInt(3)},
			testutil.Field{Name: "list", Value: testutil.CStrings("a", "b")},
		),
	))

	c := newTestClient(t, node.URL())
	got, err := c.ExecuteScript(context.Background(), "test", []byte(testScript),
		Int(1), OptionalAddress("0xa2de93114bae3e73"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"total": "3", "list": []any{"a", "b"}}, got)

	reqs := node.GetRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "block_height=sealed", reqs[0].Query)
	require.Len(t, reqs[0].Arguments, 2)
	assert.JSONEq(t, `{"type":"Int","value":"1"}`, string(reqs[0].Arguments[0]))

	var arg Value
	require.NoError(t, json.Unmarshal(reqs[0].Arguments[1], &arg))
	assert.Equal(t, "Optional", arg.Type)
}

func TestExecuteScript_RetriesServerErrors(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetSequence(testScript,
		testutil.NewServerErrorResponse(),
		testutil.NewRateLimitResponse(),
		testutil.NewScriptResult(testutil.CInt(7)),
	)

	c := newTestClient(t, node.URL())
	got, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	require.NoError(t, err)
	assert.Equal(t, "7", got)
	assert.Equal(t, 3, node.GetRequestCount())
}

func TestExecuteScript_ScriptErrorNotRetried(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetResponse(testScript, testutil.NewBadRequestResponse("cannot find declaration"))

	c := newTestClient(t, node.URL())
	_, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	require.Error(t, err)

	var ae *AccessError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrorClassClient, ae.ErrorClass)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
	assert.Equal(t, "cannot find declaration", ae.Message)
	assert.Equal(t, 1, node.GetRequestCount())
}

func TestExecuteScript_RetryExhausted(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetResponse(testScript, testutil.NewServerErrorResponse())

	c := newTestClient(t, node.URL())
	_, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 3, node.GetRequestCount())
}

func TestExecuteScript_DecodeError(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetResponse(testScript, testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"not":"a string"}`})

	c := newTestClient(t, node.URL())
	_, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	require.Error(t, err)
	assert.Equal(t, ErrorClassDecode, classOf(err))
	assert.Equal(t, 1, node.GetRequestCount())
}

func TestExecuteScript_NetworkError(t *testing.T) {
	node := testutil.NewMockAccessNode()
	url := node.URL()
	node.Close()

	c := newTestClient(t, url)
	_, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, ErrorClassNetwork, classOf(err))
}

func TestExecuteScript_LeasesEndpoints(t *testing.T) {
	first := testutil.NewMockAccessNode()
	defer first.Close()
	second := testutil.NewMockAccessNode()
	defer second.Close()
	for _, node := range []*testutil.MockAccessNode{first, second} {
		node.SetResponse(testScript, testutil.NewScriptResult(testutil.CBool(true)))
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	ns := cache.Namespace{Network: "testnet"}

	cfg := DefaultConfig(first.URL(), second.URL())
	cfg.RateLimit = 0
	cfg.Retry = fastRetry(1)
	cfg.Pool = keypool.NewPool(rdb, ns, zerolog.Nop())
	cfg.PoolOwner = "0xb86f928a1fa7798e"
	c, err := New(cfg)
	require.NoError(t, err)

	for range 4 {
		got, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
		require.NoError(t, err)
		assert.Equal(t, true, got)
	}

	// Released leases are reused before the pool grows
	assert.Equal(t, 4, first.GetRequestCount())
	assert.Equal(t, 0, second.GetRequestCount())

	counter, err := mr.Get(ns.PoolKey(cfg.PoolOwner) + ":KEY_VALUE")
	require.NoError(t, err)
	assert.Equal(t, "1", counter)
}

func TestExecuteScript_LeaseFallback(t *testing.T) {
	first := testutil.NewMockAccessNode()
	defer first.Close()
	second := testutil.NewMockAccessNode()
	defer second.Close()
	for _, node := range []*testutil.MockAccessNode{first, second} {
		node.SetResponse(testScript, testutil.NewScriptResult(testutil.CVoid()))
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	cfg := DefaultConfig(first.URL(), second.URL())
	cfg.RateLimit = 0
	cfg.Pool = keypool.NewPool(rdb, cache.Namespace{Network: "testnet"}, zerolog.Nop())
	cfg.PoolOwner = "0xb86f928a1fa7798e"
	c, err := New(cfg)
	require.NoError(t, err)

	got, err := c.ExecuteScript(context.Background(), "test", []byte(testScript))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, first.GetRequestCount()+second.GetRequestCount())
}

func TestExecuteScript_RateLimited(t *testing.T) {
	node := testutil.NewMockAccessNode()
	defer node.Close()
	node.SetResponse(testScript, testutil.NewScriptResult(testutil.CInt(1)))

	cfg := DefaultConfig(node.URL())
	cfg.RateLimit = 1
	cfg.Burst = 1
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.ExecuteScript(context.Background(), "test", []byte(testScript))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ExecuteScript(ctx, "test", []byte(testScript))
	require.Error(t, err)
	assert.Equal(t, ErrorClassClient, classOf(err))
	assert.Equal(t, 1, node.GetRequestCount())
}
