package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-reply-engine/internal/engine"
	"chat-reply-engine/internal/index"
	"chat-reply-engine/internal/types"
)

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	c := index.Build(
		[]types.Message{{ID: 1, Text: "hello"}, {ID: 2, Text: "hello there"}},
		[]types.Reply{
			{Text: "hi!", ReplyToID: 1},
			{Text: "hey", ReplyToID: 1},
			{Text: "yo", ReplyToID: 2},
		},
	)
	e, err := engine.NewEngine(c, engine.DefaultConfig())
	require.NoError(t, err)
	return NewServer(e, cfg).Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRespond(t *testing.T) {
	h := newTestServer(t, Config{})

	rr := do(h, http.MethodPost, "/respond", `{"query": "hello there"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp RespondResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "yo", resp.Response)
	assert.Equal(t, "hello there", resp.Request)
	assert.Equal(t, 1, resp.Position)
	assert.True(t, resp.Matched)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, rr.Header().Get(requestIDHeader))
}

func TestRespond_KeepsCallerRequestID(t *testing.T) {
	h := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/respond", strings.NewReader(`{"query": "hello"}`))
	req.Header.Set(requestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp RespondResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "abc-123", resp.RequestID)
	assert.Contains(t, []string{"hi!", "hey", "yo"}, resp.Response)
}

func TestRespond_EmptyQueryIsAnswered(t *testing.T) {
	h := newTestServer(t, Config{})

	rr := do(h, http.MethodPost, "/respond", `{"query": ""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp RespondResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "yo", resp.Response)
}

func TestRespond_BadRequests(t *testing.T) {
	h := newTestServer(t, Config{})

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/respond", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/respond", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/respond", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/respond", `{"q": "hello"}`).Code)
}

func TestRespond_RateLimited(t *testing.T) {
	h := newTestServer(t, Config{RateLimit: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/respond", `{"query": "hello"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/respond", `{"query": "hello"}`).Code)
	// Only /respond is limited.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
}

func TestHealthAndStats(t *testing.T) {
	h := newTestServer(t, Config{})

	rr := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, float64(2), health["entries"])

	rr = do(h, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["entries"])
	assert.Equal(t, float64(3), stats["responses"])

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/stats", "").Code)
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, Config{})

	rr := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chat-reply-engine")

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nope", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})
	do(h, http.MethodPost, "/respond", `{"query": "hello"}`)

	rr := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chat_reply_engine_queries_total")
	assert.Contains(t, rr.Body.String(), `chat_reply_engine_http_requests_total{code="200",path="/respond"}`)
}
