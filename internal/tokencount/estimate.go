// Package tokencount estimates request token counts for telemetry when
// the upstream response carries no usage object.
//
// DESIGN: A model known to tiktoken uses its own encoding, looked up on
// each call. Other models use cl100k_base, which is loaded lazily and
// cached. Only when no encoding can be loaded (missing BPE data) does
// the estimate fall back to the rough 4-characters-per-token heuristic;
// estimates are informational only and never gate a request.
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// charsPerToken is the fallback estimate ratio.
const charsPerToken = 4

var (
	mu       sync.Mutex
	encoders = make(map[string]*tiktoken.Tiktoken)
)

func encoderFor(model string) *tiktoken.Tiktoken {
	mu.Lock()
	defer mu.Unlock()

	name := "cl100k_base"
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return enc
		}
	}
	if enc, ok := encoders[name]; ok {
		return enc
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil
	}
	encoders[name] = enc
	return enc
}

// Estimate returns an approximate token count for text under the given
// model's tokenizer.
func Estimate(model, text string) int {
	if text == "" {
		return 0
	}
	if enc := encoderFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(text) / charsPerToken
}
