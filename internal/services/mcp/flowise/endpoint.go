package flowise

import (
	"fmt"
	"net/url"
	"strings"
)

// APIRoot is the path segment every Flowise REST endpoint lives under.
const APIRoot = "/api/v1"

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "http://localhost:3000"

// NormalizeEndpoint turns a user-supplied address into the API root URL.
// It adds an http scheme when none is given, appends /api/v1 unless the path
// already ends with it and strips trailing slashes from the path. Query,
// fragment and escaped path segments are kept as given. Applying it twice
// gives the same result as applying it once.
//
// Any other scheme is treated as part of the host and still gets the http
// prefix, so "ftp://x" becomes "http://ftp://x/api/v1". Use ValidateEndpoint
// to reject such input up front.
func NormalizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultEndpoint
	}
	if !hasHTTPScheme(raw) {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}

	escaped := strings.TrimRight(parsed.EscapedPath(), "/")
	if !strings.HasSuffix(escaped, APIRoot) {
		escaped += APIRoot
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	parsed.Path = path
	parsed.RawPath = escaped

	return parsed.String()
}

// ValidateEndpoint rejects addresses that name a scheme other than http or
// https. Addresses without a scheme are accepted.
func ValidateEndpoint(raw string) error {
	raw = strings.TrimSpace(raw)
	scheme, _, found := strings.Cut(raw, "://")
	if !found || !isScheme(scheme) || hasHTTPScheme(raw) {
		return nil
	}
	return fmt.Errorf("endpoint %q: scheme %q is not supported, use http or https", raw, scheme)
}

func hasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isScheme reports whether s has the shape of a URL scheme.
func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
