package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymesh/inference-gateway/internal/forward"
	"github.com/relaymesh/inference-gateway/internal/gateway"
	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/usage"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	registry, err := routing.NewRegistry(routing.DefaultStrategies()...)
	require.NoError(t, err)

	gw := gateway.New(registry, forward.New(forward.NewClient(0, 0), nil), nil, nil, nil)
	return New(gw, Options{Accumulator: nil, Feed: nil})
}

func TestServer_Health(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestServer_ProvidersListing(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Providers []struct {
			Name string `json:"name"`
		} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	names := make([]string, 0, len(resp.Providers))
	for _, p := range resp.Providers {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "openai")
	assert.Contains(t, names, "anthropic")
	assert.Contains(t, names, "aws-bedrock")
	assert.GreaterOrEqual(t, len(names), 25)
}

func TestServer_ReservedPathsNeverReachCore(t *testing.T) {
	h := newHandler(t)
	for _, path := range []string{"/health", "/providers", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEqual(t, http.StatusNotFound, w.Code, path)
	}
}

func TestServer_CatchAllRoutesToGateway(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/definitely-not-a-provider/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Unknown provider: definitely-not-a-provider."))
}

func TestServer_ProvidersWithTotals(t *testing.T) {
	registry, err := routing.NewRegistry(routing.DefaultStrategies()...)
	require.NoError(t, err)
	gw := gateway.New(registry, forward.New(forward.NewClient(0, 0), nil), nil, nil, nil)

	acc := usage.NewAccumulator()
	defer acc.Close()
	acc.Consume(usage.Event{Provider: "openai", Tokens: usage.NewTokenMetrics(10, 5, 0)})

	h := New(gw, Options{Accumulator: acc})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers", nil))

	assert.Contains(t, w.Body.String(), `"request_count":1`)
}
