package observe

import (
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// openAIParser extracts usage from OpenAI-compatible responses:
// chat/completions, legacy completions, and embeddings. Streaming
// responses are SSE chunks where usage appears on at most one frame;
// the [DONE] sentinel never carries usage.
type openAIParser struct {
	lastModel string
}

func (p *openAIParser) parse(r io.Reader, streaming bool, emit func(Sample)) {
	if !streaming {
		body, ok := readBody(r)
		if !ok || len(body) == 0 {
			return
		}
		p.handlePayload(body, emit)
		return
	}
	scanStream(r, func(payload []byte) {
		p.handlePayload(payload, emit)
	})
}

func (p *openAIParser) handlePayload(payload []byte, emit func(Sample)) {
	if !gjson.ValidBytes(payload) {
		log.Trace().Msg("openai usage parser: skipping malformed JSON frame")
		return
	}
	doc := gjson.ParseBytes(payload)

	if model := doc.Get("model").String(); model != "" {
		p.lastModel = model
	}

	u := doc.Get("usage")
	if !u.IsObject() {
		return
	}

	input := u.Get("prompt_tokens").Int()
	output := u.Get("completion_tokens").Int()
	cached := u.Get("prompt_tokens_details.cached_tokens").Int()

	model := p.lastModel
	if model == "" {
		model = "unknown"
	}

	emit(Sample{
		Model:  model,
		Tokens: newTokenCounts(input, output, cached),
	})
}
