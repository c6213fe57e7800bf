// Package routing maps provider names to upstream rewrite rules.
//
// DESIGN: One Strategy per provider. A Strategy is a pure function from
// the parsed request path to a RouteDecision; the Registry dispatches on
// the lower-cased first path segment. Both are frozen at startup —
// strategies are registered explicitly so the provider set is auditable
// and duplicate names fail initialization instead of shadowing.
package routing

import (
	"net/http"

	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

// MetadataProvider is the metadata key every successful decision carries.
const MetadataProvider = "Provider"

// RouteDecision is the outcome of routing one request: either a target
// origin with rewrite data, or a human-readable failure.
type RouteDecision struct {
	Provider       string
	Scheme         string // default "https"
	Host           string
	TargetSegments []string
	Query          string
	ExtraHeaders   http.Header
	Metadata       map[string]string

	Err string
}

// OK reports whether the decision is a success.
func (d RouteDecision) OK() bool {
	return d.Err == ""
}

// TargetURI derives scheme://host/join('/', segments)[?query].
func (d RouteDecision) TargetURI() string {
	return urlpath.BuildTargetURI(d.Scheme, d.Host, d.TargetSegments, d.Query)
}

// Failure builds a failed decision carrying the validator's message.
func Failure(msg string) RouteDecision {
	return RouteDecision{Err: msg}
}

// successOption mutates a success decision during construction.
type successOption func(*RouteDecision)

// WithScheme overrides the default https scheme.
func WithScheme(scheme string) successOption {
	return func(d *RouteDecision) { d.Scheme = scheme }
}

// WithHeader adds an extra header to inject on the outgoing request.
func WithHeader(name, value string) successOption {
	return func(d *RouteDecision) { d.ExtraHeaders.Set(name, value) }
}

// WithMetadata merges a metadata entry; last write wins on collision.
func WithMetadata(key, value string) successOption {
	return func(d *RouteDecision) { d.Metadata[key] = value }
}

// Success builds a successful decision. ExtraHeaders and Metadata are
// always non-nil, and Metadata[MetadataProvider] is pre-populated.
func Success(provider, host string, targetSegments []string, query string, opts ...successOption) RouteDecision {
	if targetSegments == nil {
		targetSegments = []string{}
	}
	d := RouteDecision{
		Provider:       provider,
		Scheme:         "https",
		Host:           host,
		TargetSegments: targetSegments,
		Query:          query,
		ExtraHeaders:   http.Header{},
		Metadata:       map[string]string{MetadataProvider: provider},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Strategy encodes one provider's URL scheme and header injection.
// Route must be pure: it reads only the parsed path and request headers,
// never bodies, and never injects authorization material.
type Strategy interface {
	Name() string
	Route(r *http.Request, path urlpath.ParsedPath) RouteDecision
}
