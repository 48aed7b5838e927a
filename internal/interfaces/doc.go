// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
//   - MovieUpdater: catalog access for the metadata enricher (internal/metadata/enricher.go)
//   - MetadataProvider: movie metadata from external APIs (internal/metadata/enricher.go)
//   - FeedFetcher: fetching and parsing Letterboxd RSS feeds (internal/letterboxd/feed.go)
//   - PosterInvalidator: dropping cached poster images (internal/metadata/enricher.go)
//
// # Adding a New Metadata Provider
//
// To add a new source of movie metadata (e.g., OMDb), implement
// MetadataProvider in internal/metadata/ and wire it into the enricher
// in entrypoint.go:
//
//	type OMDBClient struct {
//		apiKey     string
//		httpClient *http.Client
//	}
//
//	func (c *OMDBClient) SearchMovie(ctx context.Context, title string, year int) (*MovieMetadata, error)
//	func (c *OMDBClient) GetMovieDetails(ctx context.Context, id int) (*MovieMetadata, error)
//
//	var _ MetadataProvider = (*OMDBClient)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
