// Package gateway runs the request pipeline: parse the provider path,
// route through the strategy registry, forward transparently, and tee
// the response into the usage observer.
//
// DESIGN: The gateway is the single synchronous failure boundary.
// Validation failures answer 404 with the validator's message before any
// upstream connection; upstream transport failures answer 502; anything
// unexpected answers 500. Everything past the forwarder (observation,
// telemetry, sinks) is best-effort and never degrades the proxy.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/relaymesh/inference-gateway/internal/forward"
	"github.com/relaymesh/inference-gateway/internal/monitoring"
	"github.com/relaymesh/inference-gateway/internal/observe"
	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/tokencount"
	"github.com/relaymesh/inference-gateway/internal/urlpath"
	"github.com/relaymesh/inference-gateway/internal/usage"
)

// HeaderRequestID lets clients correlate gateway logs with their own.
const HeaderRequestID = "X-Request-ID"

const (
	bodyBadGateway    = "Bad Gateway"
	bodyInternalError = "Internal server error during request forwarding"
)

// Gateway wires the registry, forwarder, trackers, and telemetry.
type Gateway struct {
	registry  *routing.Registry
	forwarder *forward.Forwarder
	trackers  usage.Trackers
	recorder  *monitoring.Recorder
	metrics   *monitoring.Metrics
}

// New assembles a Gateway. recorder and metrics may be nil in tests.
func New(registry *routing.Registry, forwarder *forward.Forwarder, trackers usage.Trackers, recorder *monitoring.Recorder, metrics *monitoring.Metrics) *Gateway {
	return &Gateway{
		registry:  registry,
		forwarder: forwarder,
		trackers:  trackers,
		recorder:  recorder,
		metrics:   metrics,
	}
}

// Registry exposes the provider set for the /providers listing.
func (g *Gateway) Registry() *routing.Registry {
	return g.registry
}

// ServeHTTP handles one proxied request end to end.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := g.requestID(r)

	parsed := urlpath.Parse(r.URL.Path, r.URL.RawQuery)
	ctx := WithParsedPath(r.Context(), parsed)
	ctx = WithRequestID(ctx, requestID)

	decision := g.registry.Route(r, parsed)
	ctx = WithRouteDecision(ctx, decision)
	r = r.WithContext(ctx)

	if !decision.OK() {
		g.respondText(w, http.StatusNotFound, decision.Err)
		g.record(requestID, r, parsed, decision, startTime, http.StatusNotFound, decision.Err, nil, nil)
		return
	}

	// Bounded request sniff: model name and a token estimate for
	// telemetry. The body itself streams through unbuffered.
	sniffer := newBodySniffer(r.Body)
	r.Body = sniffer

	tracker := g.trackers.Match(r, parsed)
	collector := newEventCollector(requestID, decision.Provider, tracker)

	upstreamStatus, err := g.forwardSafely(w, r, decision, collector.factory(r.Context()))
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Str("provider", decision.Provider).Msg("forwarding failed")
		if g.metrics != nil {
			g.metrics.UpstreamErrors.WithLabelValues(decision.Provider).Inc()
		}
		status := http.StatusBadGateway
		body := bodyBadGateway
		if isInternal(err) {
			status = http.StatusInternalServerError
			body = bodyInternalError
		}
		g.respondText(w, status, body)
		g.record(requestID, r, parsed, decision, startTime, status, err.Error(), sniffer, nil)
		return
	}

	g.record(requestID, r, parsed, decision, startTime, upstreamStatus, "", sniffer, collector)
}

// internalError marks failures that are the gateway's own fault rather
// than the upstream's.
type internalError struct{ err error }

func (e internalError) Error() string { return e.err.Error() }
func (e internalError) Unwrap() error { return e.err }

func isInternal(err error) bool {
	_, ok := err.(internalError)
	return ok
}

// forwardSafely converts forwarder panics into 500s instead of taking
// down the connection.
func (g *Gateway) forwardSafely(w http.ResponseWriter, r *http.Request, d routing.RouteDecision, obsFactory forward.ObserverFactory) (status int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = internalError{fmt.Errorf("panic during forwarding: %v", rec)}
		}
	}()
	return g.forwarder.Forward(w, r, d, obsFactory)
}

func (g *Gateway) requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}

func (g *Gateway) respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// record writes the telemetry event and bumps prometheus counters.
func (g *Gateway) record(requestID string, r *http.Request, parsed urlpath.ParsedPath, d routing.RouteDecision, startTime time.Time, status int, errMsg string, sniffer *bodySniffer, collector *eventCollector) {
	provider := d.Provider
	if provider == "" {
		provider = parsed.Provider()
	}

	if g.metrics != nil {
		g.metrics.RequestsTotal.WithLabelValues(provider, statusClass(status)).Inc()
		g.metrics.RequestDuration.WithLabelValues(provider).Observe(time.Since(startTime).Seconds())
	}

	if g.recorder == nil {
		return
	}

	event := &monitoring.RequestEvent{
		RequestID:      requestID,
		Timestamp:      startTime,
		Method:         r.Method,
		Path:           r.URL.Path,
		ClientIP:       r.RemoteAddr,
		Provider:       provider,
		TargetHost:     d.Host,
		StatusCode:     status,
		Success:        status < 400,
		Error:          errMsg,
		TotalLatencyMs: time.Since(startTime).Milliseconds(),
	}

	if collector != nil {
		if ev, ok := collector.last(); ok {
			if g.metrics != nil {
				g.metrics.UsageEventsTotal.WithLabelValues(provider).Add(float64(collector.emitted.Load()))
				g.metrics.TokensTotal.WithLabelValues(provider, "input").Add(float64(ev.Tokens.Input))
				g.metrics.TokensTotal.WithLabelValues(provider, "output").Add(float64(ev.Tokens.Output))
			}
			event.Observed = true
			event.Model = ev.Model
			event.Streaming = ev.Streaming
			event.InputTokens = int64(ev.Tokens.Input)
			event.OutputTokens = int64(ev.Tokens.Output)
			event.TotalTokens = int64(ev.Tokens.Total)
		}
	}

	if sniffer != nil && !event.Observed {
		if snippet := sniffer.snippet(); len(snippet) > 0 {
			model := gjson.GetBytes(snippet, "model").String()
			event.Model = model
			event.RequestBodySize = sniffer.total()
			event.EstimatedRequestTokens = tokencount.Estimate(model, string(snippet))
		}
	} else if sniffer != nil {
		event.RequestBodySize = sniffer.total()
	}

	g.recorder.RecordRequest(event)
}

func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// eventCollector adapts parser samples into usage events, remembering
// the last one for telemetry.
type eventCollector struct {
	requestID string
	provider  string
	tracker   usage.Tracker

	lastEvent atomic.Pointer[usage.Event]
	emitted   atomic.Int64
}

func newEventCollector(requestID, provider string, tracker usage.Tracker) *eventCollector {
	if tracker == nil {
		return nil
	}
	return &eventCollector{requestID: requestID, provider: provider, tracker: tracker}
}

// factory builds the per-request observer once response headers arrive.
func (c *eventCollector) factory(ctx context.Context) forward.ObserverFactory {
	if c == nil {
		return nil
	}
	return func(respHeader http.Header) *observe.Observer {
		return observe.New(ctx, c.tracker.Family(), c.emit)
	}
}

func (c *eventCollector) emit(streaming bool, s observe.Sample) {
	ev := usage.Event{
		RequestID: c.requestID,
		Provider:  c.provider,
		Model:     s.Model,
		Streaming: streaming,
		Timestamp: time.Now(),
		Tokens:    usage.NewTokenMetrics(int32(s.Tokens.Input), int32(s.Tokens.Output), int32(s.Tokens.Cached)),
		Cost:      s.Cost,
	}
	c.lastEvent.Store(&ev)
	c.emitted.Add(1)
	c.tracker.Consume(ev)
}

func (c *eventCollector) last() (usage.Event, bool) {
	if c == nil {
		return usage.Event{}, false
	}
	if ev := c.lastEvent.Load(); ev != nil {
		return *ev, true
	}
	return usage.Event{}, false
}
