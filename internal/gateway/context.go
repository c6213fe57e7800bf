package gateway

import (
	"context"

	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/urlpath"
)

type contextKey int

const (
	parsedPathKey contextKey = iota
	routeDecisionKey
	requestIDKey
)

// WithParsedPath attaches the parsed path to a request context.
func WithParsedPath(ctx context.Context, p urlpath.ParsedPath) context.Context {
	return context.WithValue(ctx, parsedPathKey, p)
}

// ParsedPathFromContext returns the parsed path attached by the gateway.
func ParsedPathFromContext(ctx context.Context) (urlpath.ParsedPath, bool) {
	p, ok := ctx.Value(parsedPathKey).(urlpath.ParsedPath)
	return p, ok
}

// WithRouteDecision attaches the route decision to a request context.
func WithRouteDecision(ctx context.Context, d routing.RouteDecision) context.Context {
	return context.WithValue(ctx, routeDecisionKey, d)
}

// RouteDecisionFromContext returns the decision attached by the gateway.
func RouteDecisionFromContext(ctx context.Context) (routing.RouteDecision, bool) {
	d, ok := ctx.Value(routeDecisionKey).(routing.RouteDecision)
	return d, ok
}

// WithRequestID attaches the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
