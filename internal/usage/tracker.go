package usage

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/relaymesh/inference-gateway/internal/observe"
	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

// Tracker decides whether a request's response is observed, and
// consumes the events the parser emits. Consume must be safe under
// concurrent calls from parser goroutines.
type Tracker interface {
	Provider() string
	Family() observe.Family
	ShouldTrack(r *http.Request, path urlpath.ParsedPath) bool
	Consume(ev Event)
}

// Trackers dispatches to the first tracker claiming a request.
type Trackers []Tracker

// Match returns the tracker observing this request, or nil.
func (ts Trackers) Match(r *http.Request, path urlpath.ParsedPath) Tracker {
	for _, t := range ts {
		if t.ShouldTrack(r, path) {
			return t
		}
	}
	return nil
}

// openAIEndpoints are the OpenAI-compatible paths whose response format
// the parser understands.
var openAIEndpoints = map[string]bool{
	"v1/chat/completions": true,
	"v1/completions":      true,
	"v1/embeddings":       true,
}

// openAITracker observes OpenAI chat/completions/embeddings responses.
type openAITracker struct {
	sinks []Sink
}

// NewOpenAITracker builds the OpenAI-compatible tracker.
func NewOpenAITracker(sinks ...Sink) Tracker {
	return &openAITracker{sinks: sinks}
}

func (t *openAITracker) Provider() string       { return "openai" }
func (t *openAITracker) Family() observe.Family { return observe.FamilyOpenAI }

func (t *openAITracker) ShouldTrack(_ *http.Request, path urlpath.ParsedPath) bool {
	return strings.EqualFold(path.Provider(), "openai") && openAIEndpoints[path.RestPath()]
}

func (t *openAITracker) Consume(ev Event) {
	logEvent(ev)
	dispatch(t.sinks, ev)
}

// anthropicTracker observes Anthropic messages responses and carries
// cost alongside tokens.
type anthropicTracker struct {
	sinks []Sink
}

// NewAnthropicTracker builds the Anthropic tracker.
func NewAnthropicTracker(sinks ...Sink) Tracker {
	return &anthropicTracker{sinks: sinks}
}

func (t *anthropicTracker) Provider() string       { return "anthropic" }
func (t *anthropicTracker) Family() observe.Family { return observe.FamilyAnthropic }

func (t *anthropicTracker) ShouldTrack(_ *http.Request, path urlpath.ParsedPath) bool {
	return strings.EqualFold(path.Provider(), "anthropic") &&
		strings.Contains(path.RestPath(), "v1/messages")
}

func (t *anthropicTracker) Consume(ev Event) {
	logEvent(ev)
	dispatch(t.sinks, ev)
}

// logEvent is the default sink: one structured record per usage event.
func logEvent(ev Event) {
	rec := log.Info().
		Str("request_id", ev.RequestID).
		Str("provider", ev.Provider).
		Str("model", ev.Model).
		Bool("streaming", ev.Streaming).
		Int32("input_tokens", ev.Tokens.Input).
		Int32("output_tokens", ev.Tokens.Output).
		Int32("cached_tokens", ev.Tokens.Cached).
		Int32("total_tokens", ev.Tokens.Total)
	if ev.Cost != nil {
		rec = rec.Str("total_cost_usd", ev.Cost.Total.String())
	}
	rec.Msg("usage event")
}

func dispatch(sinks []Sink, ev Event) {
	for _, s := range sinks {
		s.Consume(ev)
	}
}
