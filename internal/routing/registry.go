package routing

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

// Registry maps lower-cased provider names to strategies.
// Immutable after construction; safe for concurrent dispatch.
type Registry struct {
	strategies map[string]Strategy
	names      []string // sorted, for error messages and /providers
}

// NewRegistry builds a registry from the given strategies.
// Two strategies sharing a name (case-insensitive) is an initialization
// error — the provider set must be unambiguous.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	reg := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		name := strings.ToLower(s.Name())
		if _, exists := reg.strategies[name]; exists {
			return nil, fmt.Errorf("duplicate provider strategy: %s", name)
		}
		reg.strategies[name] = s
		reg.names = append(reg.names, name)
	}
	sort.Strings(reg.names)
	return reg, nil
}

// Names returns the sorted provider names.
func (reg *Registry) Names() []string {
	return append([]string(nil), reg.names...)
}

// Lookup returns the strategy for a provider name, case-insensitively.
func (reg *Registry) Lookup(name string) (Strategy, bool) {
	s, ok := reg.strategies[strings.ToLower(name)]
	return s, ok
}

// Route dispatches the parsed path to its provider strategy.
// A missing provider yields a failure listing every registered name;
// a strategy's own failure is propagated unchanged.
func (reg *Registry) Route(r *http.Request, path urlpath.ParsedPath) RouteDecision {
	provider := path.Provider()
	if provider == "" {
		return Failure(fmt.Sprintf("Unknown provider: . Available: %s", strings.Join(reg.names, ", ")))
	}

	s, ok := reg.Lookup(provider)
	if !ok {
		return Failure(fmt.Sprintf("Unknown provider: %s. Available: %s", provider, strings.Join(reg.names, ", ")))
	}
	return s.Route(r, path)
}
