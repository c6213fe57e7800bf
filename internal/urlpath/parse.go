// Package urlpath splits and rebuilds provider-routed request paths.
//
// DESIGN: The gateway addresses upstreams as /{provider}/{rest...}.
// Parsing keeps the raw segments verbatim (no URL decoding, no
// normalization beyond dropping empty segments) so upstream hosts
// receive exactly what the client sent.
package urlpath

import "strings"

// ParsedPath is the segment view of an inbound request path.
// Segments never contain empty entries; Query has no leading '?'.
type ParsedPath struct {
	Original string
	Segments []string
	Query    string
}

// Parse splits a raw URL path into non-empty segments.
// "/a//b/" and "/a/b" parse identically. Parsing never fails.
func Parse(path, rawQuery string) ParsedPath {
	p := ParsedPath{Original: path, Query: rawQuery}

	if path == "" || path == "/" {
		p.Segments = []string{}
		return p
	}

	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	p.Segments = segments
	return p
}

// Provider returns the first segment, or "" when the path is bare.
func (p ParsedPath) Provider() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0]
}

// Rest returns the segments after the provider segment.
func (p ParsedPath) Rest() []string {
	if len(p.Segments) <= 1 {
		return []string{}
	}
	return p.Segments[1:]
}

// RestPath returns Rest joined with "/", without a leading slash.
// Used by trackers to match endpoint shapes like "v1/chat/completions".
func (p ParsedPath) RestPath() string {
	return strings.Join(p.Rest(), "/")
}
