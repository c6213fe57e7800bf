package observe

import (
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/relaymesh/inference-gateway/internal/pricing"
)

// anthropicParser extracts usage and cost from Anthropic messages
// responses. Streaming responses emit on message_start (usage under
// message.usage) and message_stop (top-level usage, model carried over
// from message_start or "unknown").
type anthropicParser struct {
	lastModel string
}

func (p *anthropicParser) parse(r io.Reader, streaming bool, emit func(Sample)) {
	if !streaming {
		body, ok := readBody(r)
		if !ok || len(body) == 0 {
			return
		}
		if !gjson.ValidBytes(body) {
			log.Trace().Msg("anthropic usage parser: malformed response body")
			return
		}
		doc := gjson.ParseBytes(body)
		u := doc.Get("usage")
		if !u.IsObject() {
			return
		}
		p.emitUsage(doc.Get("model").String(), u, emit)
		return
	}

	scanStream(r, func(payload []byte) {
		p.handleEvent(payload, emit)
	})
}

func (p *anthropicParser) handleEvent(payload []byte, emit func(Sample)) {
	if !gjson.ValidBytes(payload) {
		log.Trace().Msg("anthropic usage parser: skipping malformed JSON frame")
		return
	}
	doc := gjson.ParseBytes(payload)

	switch doc.Get("type").String() {
	case "message_start":
		if model := doc.Get("message.model").String(); model != "" {
			p.lastModel = model
		}
		if u := doc.Get("message.usage"); u.IsObject() {
			p.emitUsage(p.lastModel, u, emit)
		}
	case "message_stop":
		if u := doc.Get("usage"); u.IsObject() {
			p.emitUsage(p.lastModel, u, emit)
		}
	case "":
		// Untyped frames with a usage object still count; some
		// intermediaries strip event typing.
		if u := doc.Get("usage"); u.IsObject() {
			p.emitUsage(p.lastModel, u, emit)
		}
	}
}

func (p *anthropicParser) emitUsage(model string, u gjson.Result, emit func(Sample)) {
	if model == "" {
		model = "unknown"
	}

	input := u.Get("input_tokens").Int()
	output := u.Get("output_tokens").Int()
	cacheCreation := u.Get("cache_creation_input_tokens").Int()
	cacheRead := u.Get("cache_read_input_tokens").Int()

	cost := pricing.Cost(model, input, output, cacheCreation, cacheRead)
	emit(Sample{
		Model:  model,
		Tokens: newTokenCounts(input, output, cacheRead),
		Cost:   &cost,
	})
}
