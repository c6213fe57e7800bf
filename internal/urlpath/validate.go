package urlpath

import (
	"fmt"
	"strings"
)

// MinSegments reports whether segs has at least n entries.
// The message cites both counts for 404 bodies.
func MinSegments(segs []string, n int) (bool, string) {
	if len(segs) >= n {
		return true, ""
	}
	return false, fmt.Sprintf("expected at least %d path segments, got %d", n, len(segs))
}

// NotEmpty reports whether s is non-empty after trimming whitespace.
func NotEmpty(s, field string) (bool, string) {
	if strings.TrimSpace(s) != "" {
		return true, ""
	}
	return false, fmt.Sprintf("%s must not be empty", field)
}

// MatchesPattern validates a segment against a named pattern.
// Only the non-empty rule is enforced today; the description is kept in
// the message so richer patterns slot in without changing callers.
func MatchesPattern(seg, patternDescription string) (bool, string) {
	if strings.TrimSpace(seg) != "" {
		return true, ""
	}
	return false, fmt.Sprintf("segment does not match %s: empty value", patternDescription)
}
