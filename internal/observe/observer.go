// Package observe tees response bytes to a usage parser without touching
// the stream the client sees.
//
// DESIGN: The forwarder writes every chunk downstream first, then hands
// a copy to the Observer. The Observer feeds one parser goroutine over a
// channel; the parser never sits on the downstream critical path. On the
// first chunk the response Content-Type classifies the body as streaming
// (SSE/NDJSON) or non-streaming, and the Content-Encoding selects a
// decompressor for the copy — the downstream bytes are never
// decompressed. Parser failures are logged and confined here.
package observe

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/relaymesh/inference-gateway/internal/pricing"
)

// Family selects which response parser observes a request.
type Family int

const (
	FamilyNone Family = iota
	FamilyOpenAI
	FamilyAnthropic
)

// TokenCounts is the raw token tuple a parser extracts. Total is always
// Input + Output; Cached counts provider-cache hits.
type TokenCounts struct {
	Input  int64
	Output int64
	Cached int64
	Total  int64
}

func newTokenCounts(input, output, cached int64) TokenCounts {
	return TokenCounts{Input: input, Output: output, Cached: cached, Total: input + output}
}

// Sample is one parsed usage occurrence, before request context is
// attached.
type Sample struct {
	Model  string
	Tokens TokenCounts
	Cost   *pricing.CostBreakdown
}

// EmitFunc receives each parsed sample together with the stream
// classification decided on first write.
type EmitFunc func(streaming bool, s Sample)

// feedCapacity bounds the copy channel. The parser normally keeps up
// with the wire; if it ever falls this far behind, observation is
// dropped for the request rather than stalling the client.
const feedCapacity = 1024

// Observer is the write-through wrapper for one request.
// Not safe for concurrent use; a request body is a single stream.
type Observer struct {
	ctx    context.Context
	family Family
	emit   EmitFunc

	ch        chan []byte
	done      chan struct{}
	cancel    context.CancelFunc
	started   bool
	disabled  bool
	streaming bool
}

// New creates an Observer for one request. family FamilyNone returns nil,
// which every method tolerates.
func New(ctx context.Context, family Family, emit EmitFunc) *Observer {
	if family == FamilyNone {
		return nil
	}
	return &Observer{ctx: ctx, family: family, emit: emit}
}

// streamingContentTypes classify a response body as a stream.
var streamingContentTypes = []string{
	"text/event-stream",
	"application/x-ndjson",
	"application/stream+json",
}

func isStreamingContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, t := range streamingContentTypes {
		if strings.Contains(ct, t) {
			return true
		}
	}
	return false
}

// Observe hands the Observer a copy of bytes already written downstream.
// The chunk is copied; callers may recycle buf. The first call classifies
// the response and starts the parser goroutine.
func (o *Observer) Observe(respHeader http.Header, buf []byte) {
	if o == nil || o.disabled {
		return
	}
	if !o.started {
		o.start(respHeader)
		if o.disabled {
			return
		}
	}
	if len(buf) == 0 {
		return
	}

	chunk := make([]byte, len(buf))
	copy(chunk, buf)

	select {
	case o.ch <- chunk:
	default:
		// Parser stalled; drop observation rather than the client stream.
		// Cancel instead of closing so the parser exits without emitting
		// from a truncated tail.
		log.Warn().Msg("usage observer backpressure, disabling observation for request")
		o.disabled = true
		o.cancel()
	}
}

func (o *Observer) start(respHeader http.Header) {
	o.started = true
	o.streaming = isStreamingContentType(respHeader.Get("Content-Type"))

	encoding := strings.ToLower(strings.TrimSpace(respHeader.Get("Content-Encoding")))
	wrap, err := decompressor(encoding)
	if err != nil {
		log.Warn().Str("content_encoding", encoding).Msg("unknown content encoding, usage observation disabled")
		o.disabled = true
		return
	}

	o.ch = make(chan []byte, feedCapacity)
	o.done = make(chan struct{})

	parseCtx, cancel := context.WithCancel(o.ctx)
	o.cancel = cancel

	reader := wrap(&chanReader{ctx: parseCtx, ch: o.ch})
	p := newParser(o.family)
	streaming := o.streaming
	emit := func(s Sample) {
		if o.emit != nil {
			o.emit(streaming, s)
		}
	}

	go func() {
		defer close(o.done)
		p.parse(reader, streaming, emit)
	}()
}

// Close signals end of response and joins the parser goroutine.
// Safe on nil, on never-started, and on disabled observers.
func (o *Observer) Close() {
	if o == nil || !o.started {
		return
	}
	if !o.disabled {
		close(o.ch)
	}
	if o.done != nil {
		<-o.done
	}
	if o.cancel != nil {
		o.cancel()
	}
}

// chanReader adapts the copy channel to io.Reader for the parser side.
// Clean channel close reads as io.EOF; context cancellation surfaces as
// the context error so parsers skip their end-of-stream flush.
type chanReader struct {
	ctx     context.Context
	ch      <-chan []byte
	pending []byte
}

func (r *chanReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		select {
		case chunk, ok := <-r.ch:
			if !ok {
				return 0, io.EOF
			}
			r.pending = chunk
		case <-r.ctx.Done():
			return 0, r.ctx.Err()
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
