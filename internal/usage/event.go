// Package usage defines token-usage events, per-provider trackers that
// decide which requests to observe, and the sinks that consume events.
//
// DESIGN: The streaming observer produces one event per usage object
// the parser finds: usually one per response, two for an Anthropic
// stream (message_start and message_stop). Trackers are registered per provider; Consume must
// tolerate concurrent calls because every request runs its own parser
// goroutine. The default sink is structured logging; SQLite persistence
// and the live websocket feed are optional sinks layered on top.
package usage

import (
	"time"

	"github.com/relaymesh/inference-gateway/internal/pricing"
)

// TokenMetrics is the token-count tuple extracted from one response.
// Total is always Input + Output; Cached counts tokens served from a
// provider-side prompt cache and is informational.
type TokenMetrics struct {
	Input  int32 `json:"input"`
	Output int32 `json:"output"`
	Cached int32 `json:"cached"`
	Total  int32 `json:"total"`
}

// NewTokenMetrics builds a tuple with the total derived.
func NewTokenMetrics(input, output, cached int32) TokenMetrics {
	return TokenMetrics{Input: input, Output: output, Cached: cached, Total: input + output}
}

// Event is emitted once per usage object found in an observed response.
type Event struct {
	RequestID string                 `json:"request_id"`
	Provider  string                 `json:"provider"`
	Model     string                 `json:"model"`
	Streaming bool                   `json:"streaming"`
	Timestamp time.Time              `json:"timestamp"`
	Tokens    TokenMetrics           `json:"tokens"`
	Cost      *pricing.CostBreakdown `json:"cost,omitempty"`
}
