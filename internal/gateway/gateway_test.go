package gateway

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymesh/inference-gateway/internal/forward"
	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/urlpath"
	"github.com/relaymesh/inference-gateway/internal/usage"
)

// localStrategy is a transparent strategy pointed at a test upstream.
type localStrategy struct {
	name string
	host string
}

func (s *localStrategy) Name() string { return s.name }

func (s *localStrategy) Route(_ *http.Request, path urlpath.ParsedPath) routing.RouteDecision {
	return routing.Success(s.name, s.host, path.Rest(), path.Query, routing.WithScheme("http"))
}

// captureSink records consumed events.
type captureSink struct {
	mu     sync.Mutex
	events []usage.Event
}

func (c *captureSink) Consume(ev usage.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureSink) all() []usage.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]usage.Event(nil), c.events...)
}

// newTestGateway wires a gateway whose openai/anthropic strategies hit
// the given upstream.
func newTestGateway(t *testing.T, upstream *httptest.Server, sink usage.Sink) *Gateway {
	t.Helper()

	host := ""
	if upstream != nil {
		u, err := url.Parse(upstream.URL)
		require.NoError(t, err)
		host = u.Host
	}

	registry, err := routing.NewRegistry(
		&localStrategy{name: "openai", host: host},
		&localStrategy{name: "anthropic", host: host},
	)
	require.NoError(t, err)

	var sinks []usage.Sink
	if sink != nil {
		sinks = append(sinks, sink)
	}
	trackers := usage.Trackers{
		usage.NewOpenAITracker(sinks...),
		usage.NewAnthropicTracker(sinks...),
	}

	forwarder := forward.New(forward.NewClient(0, 0), nil)
	return New(registry, forwarder, trackers, nil, nil)
}

func TestGateway_UnknownProvider404(t *testing.T) {
	upstreamHit := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHit = true
	}))
	defer upstream.Close()

	gw := newTestGateway(t, upstream, nil)

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/anything", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Unknown provider: nope."), w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.False(t, upstreamHit, "validation failures must not reach upstream")
}

func TestGateway_OpenAIPassthrough(t *testing.T) {
	var gotPath, gotAuth, gotXFF string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotXFF = r.Header.Get("X-Forwarded-For")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1"}`))
	}))
	defer upstream.Close()

	gw := newTestGateway(t, upstream, nil)

	body := `{"model":"gpt-4","messages":[{"role":"user","content":"Hi"}]}`
	r := httptest.NewRequest(http.MethodPost, "/openai/v1/chat/completions", strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer X")
	r.Header.Set("X-Forwarded-For", "10.0.0.1")

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer X", gotAuth)
	assert.Empty(t, gotXFF)
	assert.JSONEq(t, `{"id":"chatcmpl-1"}`, w.Body.String())
}

func TestGateway_AnthropicNonStreamingUsage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"claude-3-5-sonnet-20241022","usage":{"input_tokens":100,"output_tokens":50}}`))
	}))
	defer upstream.Close()

	sink := &captureSink{}
	gw := newTestGateway(t, upstream, sink)

	r := httptest.NewRequest(http.MethodPost, "/anthropic/v1/messages", strings.NewReader(`{"model":"claude-3-5-sonnet-20241022"}`))
	w := httptest.NewRecorder()
	gw.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	events := waitForEvents(t, sink, 1)
	ev := events[0]
	assert.Equal(t, "anthropic", ev.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", ev.Model)
	assert.False(t, ev.Streaming)
	assert.Equal(t, int32(100), ev.Tokens.Input)
	assert.Equal(t, int32(50), ev.Tokens.Output)
	assert.Equal(t, int32(150), ev.Tokens.Total)
	require.NotNil(t, ev.Cost)
	assert.Equal(t, "0.001050", ev.Cost.Total.String())
}

func TestGateway_OpenAIStreamingUsage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range []string{
			`data: {"id":"x","model":"gpt-4","choices":[{"delta":{"content":"Hi"}}]}`,
			`data: {"id":"x","model":"gpt-4","usage":{"prompt_tokens":15,"completion_tokens":87,"total_tokens":102}}`,
			`data: [DONE]`,
		} {
			fmt.Fprintf(w, "%s\n\n", frame)
			flusher.Flush()
		}
	}))
	defer upstream.Close()

	sink := &captureSink{}
	gw := newTestGateway(t, upstream, sink)

	r := httptest.NewRequest(http.MethodPost, "/openai/v1/chat/completions", strings.NewReader(`{"model":"gpt-4","stream":true}`))
	w := httptest.NewRecorder()
	gw.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// Downstream bytes are the raw SSE frames, [DONE] included.
	assert.Contains(t, w.Body.String(), `data: [DONE]`)

	events := waitForEvents(t, sink, 1)
	require.Len(t, events, 1, "[DONE] must not emit an event")
	assert.True(t, events[0].Streaming)
	assert.Equal(t, int32(15), events[0].Tokens.Input)
	assert.Equal(t, int32(87), events[0].Tokens.Output)
	assert.Nil(t, events[0].Cost)
}

func TestGateway_UntrackedEndpointNotObserved(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer upstream.Close()

	sink := &captureSink{}
	gw := newTestGateway(t, upstream, sink)

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openai/v1/models", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sink.all())
}

func TestGateway_UpstreamDown502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // nothing listening

	gw := newTestGateway(t, upstream, nil)

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/openai/v1/chat/completions", strings.NewReader("{}")))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Bad Gateway", w.Body.String())
}

func TestGateway_TemplatedStrategy404Message(t *testing.T) {
	registry, err := routing.NewRegistry(routing.NewBedrock())
	require.NoError(t, err)
	gw := New(registry, forward.New(forward.NewClient(0, 0), nil), nil, nil, nil)

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/aws-bedrock/only-runtime", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "requires at least runtime and region")
}

func TestContextHelpers(t *testing.T) {
	ctx := WithParsedPath(t.Context(), urlpath.Parse("/openai/v1/x", ""))
	parsed, ok := ParsedPathFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "openai", parsed.Provider())

	ctx = WithRouteDecision(ctx, routing.Success("openai", "api.openai.com", nil, ""))
	decision, ok := RouteDecisionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "openai", decision.Provider)

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

// waitForEvents polls the sink until n events arrive; usage events are
// emitted after downstream completion but on the parser goroutine.
func waitForEvents(t *testing.T, sink *captureSink, n int) []usage.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := sink.all(); len(events) >= n {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d usage events", n)
	return nil
}
