package forward

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Upstream transport bounds. Connects fail fast; an established request
// may idle for as long as a slow model takes to stream its first token.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultIdleTimeout    = 300 * time.Second
)

// NewClient builds the process-wide upstream HTTP client: HTTP/2
// preferred, no automatic decompression (Accept-Encoding passes
// through), no redirects, no cookies. Shared by all requests; the
// transport pools and multiplexes connections.
func NewClient(connectTimeout, idleTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := &net.Dialer{Timeout: connectTimeout}
			return d.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		DisableCompression:    true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       idleTimeout,
		ResponseHeaderTimeout: idleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
