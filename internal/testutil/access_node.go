// Package testutil provides testing utilities for the Flow access node client.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock script response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// ScriptRequest is a script execution received by the mock.
type ScriptRequest struct {
	Script    string
	Arguments []json.RawMessage
	Query     string
}

// MockAccessNode is a configurable Flow Access REST API for testing. Scripts
// are routed by their source text.
type MockAccessNode struct {
	server *httptest.Server
	mu     sync.RWMutex

	handlers  map[string]func(req ScriptRequest) MockResponse
	sequences map[string][]MockResponse

	// Tracking
	RequestCount int
	Requests     []ScriptRequest
}

// NewMockAccessNode creates a new mock access node.
func NewMockAccessNode() *MockAccessNode {
	mock := &MockAccessNode{
		handlers:  make(map[string]func(req ScriptRequest) MockResponse),
		sequences: make(map[string][]MockResponse),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.serve))
	return mock
}

// URL returns the mock server URL.
func (m *MockAccessNode) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAccessNode) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAccessNode) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
}

// SetHandler sets a custom handler for a script.
func (m *MockAccessNode) SetHandler(script string, handler func(req ScriptRequest) MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[script] = handler
}

// SetResponse answers every execution of script with resp.
func (m *MockAccessNode) SetResponse(script string, resp MockResponse) {
	m.SetHandler(script, func(ScriptRequest) MockResponse { return resp })
}

// SetSequence answers successive executions of script with resps in order.
// The last response repeats once the sequence is used up.
func (m *MockAccessNode) SetSequence(script string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[script] = resps
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAccessNode) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequests returns a copy of the received script requests.
func (m *MockAccessNode) GetRequests() []ScriptRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ScriptRequest(nil), m.Requests...)
}

func (m *MockAccessNode) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/scripts" {
		writeResponse(w, MockResponse{StatusCode: http.StatusNotFound, Body: `{"code":404,"message":"not found"}`})
		return
	}

	req, err := readScriptRequest(r)
	if err != nil {
		writeResponse(w, MockResponse{StatusCode: http.StatusBadRequest, Body: fmt.Sprintf(`{"code":400,"message":%q}`, err.Error())})
		return
	}

	m.mu.Lock()
	m.RequestCount++
	m.Requests = append(m.Requests, req)
	var resp MockResponse
	var found bool
	if seq, ok := m.sequences[req.Script]; ok && len(seq) > 0 {
		resp, found = seq[0], true
		if len(seq) > 1 {
			m.sequences[req.Script] = seq[1:]
		}
	}
	handler, exists := m.handlers[req.Script]
	m.mu.Unlock()

	switch {
	case found:
	case exists:
		resp = handler(req)
	default:
		resp = NewServerErrorResponse()
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	writeResponse(w, resp)
}

func readScriptRequest(r *http.Request) (ScriptRequest, error) {
	var body struct {
		Script    string   `json:"script"`
		Arguments []string `json:"arguments"`
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return ScriptRequest{}, err
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ScriptRequest{}, err
	}

	script, err := base64.StdEncoding.DecodeString(body.Script)
	if err != nil {
		return ScriptRequest{}, err
	}
	req := ScriptRequest{Script: string(script), Query: r.URL.RawQuery}
	for _, arg := range body.Arguments {
		raw, err := base64.StdEncoding.DecodeString(arg)
		if err != nil {
			return ScriptRequest{}, err
		}
		req.Arguments = append(req.Arguments, json.RawMessage(raw))
	}
	return req, nil
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewScriptResult creates a 200 OK response carrying a JSON-Cadence value.
func NewScriptResult(value any) MockResponse {
	data, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	encoded, _ := json.Marshal(base64.StdEncoding.EncodeToString(data))
	return MockResponse{StatusCode: http.StatusOK, Body: string(encoded)}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusTooManyRequests, Body: `{"code":429,"message":"rate limit exceeded"}`}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusInternalServerError, Body: `{"code":500,"message":"internal server error"}`}
}

// NewBadRequestResponse creates a 400 response as returned for failing scripts.
func NewBadRequestResponse(message string) MockResponse {
	return MockResponse{StatusCode: http.StatusBadRequest, Body: fmt.Sprintf(`{"code":400,"message":%q}`, message)}
}

// JSON-Cadence builders.

// CV is a JSON-Cadence value.
type CV map[string]any

// Field is a composite field.
type Field struct {
	Name  string
	Value CV
}

func CString(s string) CV  { return CV{"type": "String", "value": s} }
func CAddress(a string) CV { return CV{"type": "Address", "value": a} }
func CBool(b bool) CV      { return CV{"type": "Bool", "value": b} }
func CInt(n int) CV        { return CV{"type": "Int", "value": fmt.Sprint(n)} }
func CUInt8(n int) CV      { return CV{"type": "UInt8", "value": fmt.Sprint(n)} }
func CVoid() CV            { return CV{"type": "Void"} }

// COptional wraps v in an optional; a nil v encodes nil.
func COptional(v CV) CV {
	if v == nil {
		return CV{"type": "Optional", "value": nil}
	}
	return CV{"type": "Optional", "value": v}
}

// CArray encodes an array.
func CArray(items ...CV) CV {
	if items == nil {
		items = []CV{}
	}
	return CV{"type": "Array", "value": items}
}

// CStrings encodes a [String].
func CStrings(items ...string) CV {
	values := make([]CV, 0, len(items))
	for _, s := range items {
		values = append(values, CString(s))
	}
	return CArray(values...)
}

// CDict encodes a {String: V} dictionary with keys in sorted order.
func CDict(entries map[string]CV) CV {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]map[string]CV, 0, len(entries))
	for _, k := range keys {
		values = append(values, map[string]CV{"key": CString(k), "value": entries[k]})
	}
	return CV{"type": "Dictionary", "value": values}
}

// CStruct encodes a struct composite.
func CStruct(id string, fields ...Field) CV {
	encoded := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		encoded = append(encoded, map[string]any{"name": f.Name, "value": f.Value})
	}
	return CV{"type": "Struct", "value": map[string]any{"id": id, "fields": encoded}}
}

// CPath encodes a path.
func CPath(domain, identifier string) CV {
	return CV{"type": "Path", "value": map[string]string{"domain": domain, "identifier": identifier}}
}
