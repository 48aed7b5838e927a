package letterboxd

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var profileURLPattern = regexp.MustCompile(`^https?://letterboxd\.com/([^/]+)$`)

// BuildFeedURL resolves a free-form profile reference into the canonical
// RSS feed URL for that profile.
//
// Accepts a bare username, "letterboxd.com/<username>", a full profile URL
// or an already-canonical feed URL. Returns "" for blank input or a URL
// that does not look like a Letterboxd profile.
func BuildFeedURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Pasted without scheme, e.g. "letterboxd.com/username"
	if strings.HasPrefix(s, "letterboxd.com/") {
		s = "https://" + s
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		trimmed := strings.TrimRight(s, "/")

		// Already a feed URL; keep it, normalized to one trailing slash.
		if strings.HasSuffix(trimmed, "/rss") {
			return trimmed + "/"
		}

		// Profile URL like https://letterboxd.com/<username>/
		if m := profileURLPattern.FindStringSubmatch(trimmed); m != nil {
			return fmt.Sprintf("%s/%s/rss/", BaseURL, m[1])
		}

		// Unknown URL shape
		return ""
	}

	// Otherwise treat the whole input as a username.
	username := strings.ReplaceAll(strings.Trim(s, "/"), " ", "")
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/rss/", BaseURL, username)
}

// EntryWatchedAt extracts a best-effort watched timestamp from a feed
// entry. It prefers the structured published time and falls back to
// parsing the published-date string; nil when neither is usable.
func EntryWatchedAt(entry *gofeed.Item) *time.Time {
	if entry == nil {
		return nil
	}
	if entry.PublishedParsed != nil {
		t := *entry.PublishedParsed
		return &t
	}
	if entry.Published != "" {
		for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
			if t, err := time.Parse(layout, entry.Published); err == nil {
				return &t
			}
		}
	}
	return nil
}

// FeedFetcher retrieves and parses a feed by URL. The RSS import depends
// on this interface so tests can substitute canned feeds.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// HTTPFeedFetcher fetches feeds over HTTP with a bounded timeout and
// parses them with gofeed.
type HTTPFeedFetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewHTTPFeedFetcher creates a fetcher with the given request timeout.
func NewHTTPFeedFetcher(timeout time.Duration) *HTTPFeedFetcher {
	return &HTTPFeedFetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads and parses the feed at feedURL.
func (f *HTTPFeedFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "filmrec/1.0 (+https://github.com/filmrec/filmrec)")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}
