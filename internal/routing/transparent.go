package routing

import (
	"net/http"

	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

// transparentStrategy forwards the rest of the path verbatim to a
// well-known host. Most providers are transparent.
type transparentStrategy struct {
	name string
	host string
}

// NewTransparent builds a strategy that maps /{name}/{rest...} to
// https://{host}/{rest...}.
func NewTransparent(name, host string) Strategy {
	return &transparentStrategy{name: name, host: host}
}

func (s *transparentStrategy) Name() string { return s.name }

func (s *transparentStrategy) Route(_ *http.Request, path urlpath.ParsedPath) RouteDecision {
	return Success(s.name, s.host, path.Rest(), path.Query)
}

// prefixedStrategy prepends fixed segments before the client's rest.
// OpenRouter serves under /api, Fireworks under /inference.
type prefixedStrategy struct {
	name   string
	host   string
	prefix []string
}

// NewPrefixed builds a strategy that maps /{name}/{rest...} to
// https://{host}/{prefix...}/{rest...}.
func NewPrefixed(name, host string, prefix ...string) Strategy {
	return &prefixedStrategy{name: name, host: host, prefix: prefix}
}

func (s *prefixedStrategy) Name() string { return s.name }

func (s *prefixedStrategy) Route(_ *http.Request, path urlpath.ParsedPath) RouteDecision {
	segments := make([]string, 0, len(s.prefix)+len(path.Rest()))
	segments = append(segments, s.prefix...)
	segments = append(segments, path.Rest()...)
	return Success(s.name, s.host, segments, path.Query)
}

// DefaultStrategies returns the full provider set the gateway ships with.
// Adding a provider means adding one line here; duplicate names fail
// registry construction.
func DefaultStrategies() []Strategy {
	return []Strategy{
		// Transparent providers: host constant, path verbatim.
		NewTransparent("openai", "api.openai.com"),
		NewTransparent("anthropic", "api.anthropic.com"),
		NewTransparent("groq", "api.groq.com"),
		NewTransparent("mistral", "api.mistral.ai"),
		NewTransparent("deepseek", "api.deepseek.com"),
		NewTransparent("perplexity", "api.perplexity.ai"),
		NewTransparent("cohere", "api.cohere.com"),
		NewTransparent("together", "api.together.xyz"),
		NewTransparent("elevenlabs", "api.elevenlabs.io"),
		NewTransparent("replicate", "api.replicate.com"),
		NewTransparent("xai", "api.x.ai"),
		NewTransparent("cerebras", "api.cerebras.ai"),
		NewTransparent("deepinfra", "api.deepinfra.com"),
		NewTransparent("sambanova", "api.sambanova.ai"),
		NewTransparent("hyperbolic", "api.hyperbolic.xyz"),
		NewTransparent("novita", "api.novita.ai"),
		NewTransparent("moonshot", "api.moonshot.cn"),
		NewTransparent("voyage", "api.voyageai.com"),
		NewTransparent("jina", "api.jina.ai"),
		NewTransparent("google-ai-studio", "generativelanguage.googleapis.com"),

		// Prefixed providers.
		NewPrefixed("openrouter", "openrouter.ai", "api"),
		NewPrefixed("fireworks", "api.fireworks.ai", "inference"),

		// Templated providers: leading segments select the origin.
		NewBedrock(),
		NewAzureOpenAI(),
		NewVertexAI(),
	}
}
