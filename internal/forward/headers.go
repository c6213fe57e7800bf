// Package forward builds and executes the outgoing upstream request.
//
// DESIGN: The transformer copies client headers minus the proxy/edge
// set, pins Host to the routed target, layers in strategy headers
// without overriding the client, and swaps the URI. The response is
// streamed back chunk by chunk with an explicit flush so SSE tokens
// reach the client in real time; each chunk is handed to the usage
// observer only after the downstream write.
package forward

import "net/http"

// blockedHeaders are proxy/edge headers stripped before forwarding.
// Upstreams must see the gateway as the client, not the hops before it.
var blockedHeaders = []string{
	"X-Forwarded-For",
	"X-Forwarded-Host",
	"X-Forwarded-Proto",
	"X-Real-IP",
	"CF-Connecting-IP",
	"CF-Connecting-IPv6",
	"CF-Pseudo-IPv4",
	"True-Client-IP",
	"Cf-Ray",
	"CF-IPCountry",
}

var blockedSet = func() map[string]bool {
	m := make(map[string]bool, len(blockedHeaders))
	for _, h := range blockedHeaders {
		m[http.CanonicalHeaderKey(h)] = true
	}
	return m
}()

// sanitizeHeaders copies src minus the blocked set. Matching is
// case-insensitive via canonicalization.
func sanitizeHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for name, values := range src {
		if blockedSet[http.CanonicalHeaderKey(name)] {
			continue
		}
		dst[name] = append([]string(nil), values...)
	}
	return dst
}

// mergeExtraHeaders adds strategy-supplied headers that the client did
// not already send. Client values always win.
func mergeExtraHeaders(dst, extra http.Header) {
	for name, values := range extra {
		if dst.Get(name) != "" {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
