package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/letterboxd"
	"github.com/filmrec/filmrec/internal/metadata"
	"github.com/filmrec/filmrec/internal/posters"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// MovieUpdater implementations
var _ metadata.MovieUpdater = (*movies.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

// MetadataProvider implementations
var _ metadata.MetadataProvider = (*metadata.TMDBClient)(nil)

// FeedFetcher implementations
var _ letterboxd.FeedFetcher = (*letterboxd.HTTPFeedFetcher)(nil)

// =============================================================================
// Caching
// =============================================================================

// PosterInvalidator implementations
var _ metadata.PosterInvalidator = (*posters.Cache)(nil)
