// Package server assembles the HTTP surface: reserved routes first,
// then the catch-all proxy. The core pipeline never sees /health,
// /providers, /metrics, or, when a live feed is configured, /events.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relaymesh/inference-gateway/internal/gateway"
	"github.com/relaymesh/inference-gateway/internal/usage"
)

// Options carries the optional surfaces.
type Options struct {
	Accumulator *usage.Accumulator
	Feed        *usage.Feed
}

// New builds the router around the gateway.
func New(gw *gateway.Gateway, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", gateway.HandleHealth)
	r.Get("/providers", gw.HandleProviders(opts.Accumulator))
	r.Handle("/metrics", promhttp.Handler())
	if opts.Feed != nil {
		r.Handle("/events", opts.Feed)
	}

	// Everything else is /{provider}/{rest...}.
	r.NotFound(gw.ServeHTTP)

	return r
}
