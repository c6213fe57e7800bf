// Package config - defaults.go centralizes default values.
package config

import "time"

const (
	// DefaultPort is the gateway listen port.
	DefaultPort = 8090

	// DefaultReadTimeout bounds reading an inbound request's headers and
	// body. Generous because request bodies stream.
	DefaultReadTimeout = 300 * time.Second

	// DefaultWriteTimeout bounds writing a response. Streaming responses
	// can run for minutes on long generations.
	DefaultWriteTimeout = 600 * time.Second

	// DefaultConnectTimeout bounds dialing an upstream origin.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultIdleTimeout bounds inactivity on an upstream request.
	DefaultIdleTimeout = 300 * time.Second
)
