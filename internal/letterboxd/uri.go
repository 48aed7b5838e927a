// Package letterboxd handles the Letterboxd-specific formats consumed by
// the import pipeline: film URIs, diary CSV exports and public RSS feeds.
package letterboxd

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL is the canonical host all film URIs are normalized against.
const BaseURL = "https://letterboxd.com"

// NormalizeFilmURI canonicalizes a Letterboxd film reference.
//
// Accepts:
//   - https://letterboxd.com/film/<slug>/
//   - https://letterboxd.com/film/<slug>
//   - /film/<slug>/
//   - film/<slug>
//
// Returns the canonical form https://letterboxd.com/film/<slug>/ and true,
// or "" and false if the input does not contain a film/<slug> path.
// Malformed input never panics; it reports false.
func NormalizeFilmURI(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	var path string
	switch {
	case strings.HasPrefix(raw, "/"):
		path = raw
	case !strings.Contains(raw, "://"):
		path = "/" + raw
	default:
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", false
		}
		path = parsed.Path
	}

	parts := make([]string, 0, 4)
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 || parts[0] != "film" {
		return "", false
	}

	slug := parts[1]
	if slug == "" {
		return "", false
	}

	return fmt.Sprintf("%s/film/%s/", BaseURL, slug), true
}
