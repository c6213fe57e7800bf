package usage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaymesh/inference-gateway/internal/pricing"
)

const providerTTL = 24 * time.Hour

// ProviderTotals is the running usage for one provider.
type ProviderTotals struct {
	Provider     string
	RequestCount int64
	InputTokens  int64
	OutputTokens int64
	CachedTokens int64
	Cost         pricing.MicroUSD
	LastModel    string
	FirstSeen    time.Time
	LastUpdated  time.Time
}

// Accumulator keeps per-provider running totals for the dashboard feed
// and /providers accounting. Totals are reset when a provider goes idle
// past the TTL.
type Accumulator struct {
	mu        sync.RWMutex
	providers map[string]*ProviderTotals

	// Atomic global cost in micro-dollars for O(1) reads.
	globalCostMicro int64

	stop chan struct{}
}

// NewAccumulator creates an accumulator and starts its cleanup loop.
func NewAccumulator() *Accumulator {
	a := &Accumulator{
		providers: make(map[string]*ProviderTotals),
		stop:      make(chan struct{}),
	}
	go a.cleanup()
	return a
}

// Consume implements Sink.
func (a *Accumulator) Consume(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.providers[ev.Provider]
	if !ok {
		p = &ProviderTotals{Provider: ev.Provider, FirstSeen: time.Now()}
		a.providers[ev.Provider] = p
	}

	p.RequestCount++
	p.InputTokens += int64(ev.Tokens.Input)
	p.OutputTokens += int64(ev.Tokens.Output)
	p.CachedTokens += int64(ev.Tokens.Cached)
	p.LastUpdated = time.Now()
	if ev.Model != "" {
		p.LastModel = ev.Model
	}
	if ev.Cost != nil {
		p.Cost += ev.Cost.Total
		atomic.AddInt64(&a.globalCostMicro, int64(ev.Cost.Total))
	}
}

// GlobalCost returns the total accumulated cost across providers.
func (a *Accumulator) GlobalCost() pricing.MicroUSD {
	return pricing.MicroUSD(atomic.LoadInt64(&a.globalCostMicro))
}

// Snapshot returns a copy of all provider totals.
func (a *Accumulator) Snapshot() []ProviderTotals {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]ProviderTotals, 0, len(a.providers))
	for _, p := range a.providers {
		out = append(out, *p)
	}
	return out
}

// Close stops the cleanup loop.
func (a *Accumulator) Close() {
	close(a.stop)
}

func (a *Accumulator) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.mu.Lock()
			now := time.Now()
			for name, p := range a.providers {
				if now.Sub(p.LastUpdated) > providerTTL {
					atomic.AddInt64(&a.globalCostMicro, -int64(p.Cost))
					delete(a.providers, name)
				}
			}
			a.mu.Unlock()
		}
	}
}
