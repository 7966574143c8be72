package crawler

import (
	"net/url"
	"strings"
)

// CleanedURL pairs a discovered URL with its query-stripped form used for
// deduplication at the assembly boundary.
type CleanedURL struct {
	URL     string
	Cleaned string
}

// FilterURLs keeps the URLs whose path contains the prefix's path
// (case-insensitive), strips everything after the query marker, and
// removes duplicates by cleaned form, preserving first-seen order.
func FilterURLs(urls []string, prefix string) []CleanedURL {
	filterPath := extractFilterPath(prefix)

	seen := make(map[string]struct{}, len(urls))
	var out []CleanedURL

	for _, raw := range urls {
		if filterPath != "" && !strings.Contains(strings.ToLower(raw), strings.ToLower(filterPath)) {
			continue
		}

		cleaned := raw
		if idx := strings.Index(cleaned, "?"); idx >= 0 {
			cleaned = cleaned[:idx]
		}

		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, CleanedURL{URL: raw, Cleaned: cleaned})
	}

	return out
}

// extractFilterPath returns the prefix's path component without a
// trailing slash, used as the containment criterion.
func extractFilterPath(prefix string) string {
	u, err := url.Parse(prefix)
	if err != nil {
		return strings.TrimRight(prefix, "/")
	}
	return strings.TrimRight(u.Path, "/")
}
