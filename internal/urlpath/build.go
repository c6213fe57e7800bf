package urlpath

import "strings"

// Build reassembles a path from segments plus an optional raw query.
// The query may carry one leading '?', which is stripped before joining.
// No URL-encoding is applied; segments travel verbatim.
func Build(segments []string, query string) string {
	path := "/" + strings.Join(segments, "/")
	query = strings.TrimPrefix(query, "?")
	if query != "" {
		path += "?" + query
	}
	return path
}

// BuildTargetURI concatenates scheme, host, and the built path.
func BuildTargetURI(scheme, host string, segments []string, query string) string {
	return scheme + "://" + host + Build(segments, query)
}
