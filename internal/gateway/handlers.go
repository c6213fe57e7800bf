package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/relaymesh/inference-gateway/internal/usage"
)

// HandleHealth is the liveness probe.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// providerInfo is one row of the /providers listing.
type providerInfo struct {
	Name         string `json:"name"`
	RequestCount int64  `json:"request_count,omitempty"`
	InputTokens  int64  `json:"input_tokens,omitempty"`
	OutputTokens int64  `json:"output_tokens,omitempty"`
	TotalCostUSD string `json:"total_cost_usd,omitempty"`
}

// HandleProviders lists registered providers, annotated with observed
// totals when the accumulator is running.
func (g *Gateway) HandleProviders(acc *usage.Accumulator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		totals := map[string]usage.ProviderTotals{}
		if acc != nil {
			for _, p := range acc.Snapshot() {
				totals[p.Provider] = p
			}
		}

		providers := make([]providerInfo, 0, len(g.registry.Names()))
		for _, name := range g.registry.Names() {
			info := providerInfo{Name: name}
			if p, ok := totals[name]; ok {
				info.RequestCount = p.RequestCount
				info.InputTokens = p.InputTokens
				info.OutputTokens = p.OutputTokens
				if p.Cost > 0 {
					info.TotalCostUSD = p.Cost.String()
				}
			}
			providers = append(providers, info)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"providers": providers})
	}
}
