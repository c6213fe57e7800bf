package observe

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
)

// parseBufferSize is the read granularity for the copy stream.
const parseBufferSize = 32 * 1024

// responseParser consumes the copy stream for one request and emits
// usage samples. Implementations are stateful and single-use.
type responseParser interface {
	parse(r io.Reader, streaming bool, emit func(Sample))
}

// newParser selects the parser for a provider family.
func newParser(family Family) responseParser {
	switch family {
	case FamilyOpenAI:
		return &openAIParser{}
	case FamilyAnthropic:
		return &anthropicParser{}
	default:
		return noopParser{}
	}
}

type noopParser struct{}

func (noopParser) parse(r io.Reader, _ bool, _ func(Sample)) {
	_, _ = io.Copy(io.Discard, r)
}

// utf8BOM is stripped from non-streaming bodies before JSON parsing.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readBody drains a non-streaming copy stream. The bool reports whether
// the stream ended cleanly; a cancelled request must not emit.
func readBody(r io.Reader) ([]byte, bool) {
	body, err := io.ReadAll(r)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Err(err).Msg("usage observer: copy stream unreadable")
		}
		return nil, false
	}
	return bytes.TrimPrefix(body, utf8BOM), true
}

// scanStream drives an SSE parse loop: each completed data: payload is
// passed to handle, and the terminal data: fragment is handled once on
// clean close. Other partial content is dropped.
func scanStream(r io.Reader, handle func(payload []byte)) {
	scanner := &sseScanner{}
	buf := make([]byte, parseBufferSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range scanner.Feed(buf[:n]) {
				if payload := ssePayload(line); payload != nil {
					handle(payload)
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				if tail := scanner.Flush(); tail != nil {
					if payload := ssePayload(tail); payload != nil {
						handle(payload)
					}
				}
			} else if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Warn().Err(err).Msg("usage observer: copy stream unreadable")
			}
			return
		}
	}
}
