package protocol

import (
	"fmt"
	"strings"
)

// RefMarker is the optional prefix callers may put in front of a handle,
// as rendered in snapshot output ("[ref=@3]" is addressed as "@3" or "3").
const RefMarker = '@'

// ParseRef normalizes a caller-supplied reference handle. Both the bare
// integer form ("7") and the marker form ("@7") parse to the same internal
// handle string.
func ParseRef(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s != "" && s[0] == RefMarker {
		s = s[1:]
	}
	if s == "" {
		return "", fmt.Errorf("empty ref")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("invalid ref %q: must be a number, optionally prefixed with %q", s, string(RefMarker))
		}
	}
	// Strip leading zeros so "007" and "7" address the same handle.
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0", nil
	}
	return trimmed, nil
}
