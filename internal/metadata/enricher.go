package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/filmrec/filmrec/internal/entities"
)

// MetadataProvider defines the interface for fetching movie metadata.
type MetadataProvider interface {
	SearchMovie(ctx context.Context, title string, year int) (*MovieMetadata, error)
	GetMovieDetails(ctx context.Context, tmdbID int) (*MovieMetadata, error)
}

// MovieUpdater defines the interface for updating catalog entries in the
// database.
type MovieUpdater interface {
	GetMovieByID(id uint) (*entities.Movie, error)
	GetMoviesMissingMetadata(limit int) ([]entities.Movie, error)
	UpdateMovieMetadata(id uint, updates map[string]any) error
	ReplaceGenres(movieID uint, names []string) error
	ReplaceCredits(movieID uint, role entities.CreditRole, names []string) error
}

// PosterInvalidator defines the interface for invalidating cached posters.
type PosterInvalidator interface {
	InvalidatePoster(movieID uint) error
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Movie         *entities.Movie `json:"movie"`
	FieldsUpdated []string        `json:"fields_updated"`
	Source        string          `json:"source"`
}

// Enricher handles movie metadata enrichment from TMDb.
type Enricher struct {
	provider          MetadataProvider
	db                MovieUpdater
	posterInvalidator PosterInvalidator
}

// NewEnricher creates a new Enricher with the given metadata provider and
// database.
func NewEnricher(provider MetadataProvider, db MovieUpdater) *Enricher {
	return &Enricher{provider: provider, db: db}
}

// SetPosterInvalidator sets the poster cache invalidator (optional).
func (e *Enricher) SetPosterInvalidator(invalidator PosterInvalidator) {
	e.posterInvalidator = invalidator
}

// EnrichMovie fetches metadata for a catalog entry and updates it in the
// database. Entries already linked to TMDb are refreshed by ID; the rest
// are matched by title and release year.
func (e *Enricher) EnrichMovie(ctx context.Context, movieID uint) (*EnrichmentResult, error) {
	movie, err := e.db.GetMovieByID(movieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}

	tmdbID, err := e.resolveTMDBID(ctx, movie)
	if err != nil {
		return nil, err
	}

	details, err := e.provider.GetMovieDetails(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("get movie details: %w", err)
	}

	updates, fieldsUpdated := buildUpdates(movie, details)

	if len(fieldsUpdated) > 0 {
		if err := e.db.UpdateMovieMetadata(movieID, updates); err != nil {
			return nil, fmt.Errorf("update movie metadata: %w", err)
		}

		// Invalidate cached poster if poster URL changed
		if _, ok := updates["poster_url"]; ok && e.posterInvalidator != nil {
			_ = e.posterInvalidator.InvalidatePoster(movieID)
		}
	}

	if len(details.Genres) > 0 {
		if err := e.db.ReplaceGenres(movieID, details.Genres); err != nil {
			return nil, fmt.Errorf("replace genres: %w", err)
		}
	}
	if len(details.Directors) > 0 {
		if err := e.db.ReplaceCredits(movieID, entities.CreditRoleDirector, details.Directors); err != nil {
			return nil, fmt.Errorf("replace director credits: %w", err)
		}
	}
	if len(details.Cast) > 0 {
		if err := e.db.ReplaceCredits(movieID, entities.CreditRoleActor, details.Cast); err != nil {
			return nil, fmt.Errorf("replace cast credits: %w", err)
		}
	}

	movie, err = e.db.GetMovieByID(movieID)
	if err != nil {
		return nil, fmt.Errorf("refresh movie: %w", err)
	}

	return &EnrichmentResult{
		Movie:         movie,
		FieldsUpdated: fieldsUpdated,
		Source:        "tmdb",
	}, nil
}

func (e *Enricher) resolveTMDBID(ctx context.Context, movie *entities.Movie) (int, error) {
	if movie.TMDBID != nil {
		return *movie.TMDBID, nil
	}

	year := 0
	if movie.ReleaseDate != nil {
		year = movie.ReleaseDate.Year()
	}

	match, err := e.provider.SearchMovie(ctx, movie.Title, year)
	if err != nil {
		return 0, fmt.Errorf("metadata search failed: %w", err)
	}
	return match.TMDBID, nil
}

// BulkEnrichmentResult contains the summary of a bulk enrichment run.
type BulkEnrichmentResult struct {
	TotalMovies int      `json:"total_movies"`
	Enriched    int      `json:"enriched"`
	Failed      int      `json:"failed"`
	Skipped     int      `json:"skipped"`
	Errors      []string `json:"errors,omitempty"`
}

// EnrichAllMissing enriches catalog entries that have never been matched
// against TMDb. A limit of 0 processes everything. Entries TMDb does not
// know stay unmatched and count as skipped, not failed.
func (e *Enricher) EnrichAllMissing(ctx context.Context, limit int) (*BulkEnrichmentResult, error) {
	movies, err := e.db.GetMoviesMissingMetadata(limit)
	if err != nil {
		return nil, fmt.Errorf("get movies missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{TotalMovies: len(movies)}

	for _, movie := range movies {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichMovie(ctx, movie.ID)
		if err != nil {
			if errors.Is(err, ErrNoMatch) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", movie.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates compares existing catalog data with fetched metadata and
// returns only the columns that should change. The TMDb link is always
// recorded so the entry leaves the missing-metadata pool.
func buildUpdates(movie *entities.Movie, metadata *MovieMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fieldsUpdated []string

	if movie.TMDBID == nil || *movie.TMDBID != metadata.TMDBID {
		updates["tmdb_id"] = metadata.TMDBID
		fieldsUpdated = append(fieldsUpdated, "tmdb_id")
	}

	if movie.Description == "" && metadata.Overview != "" {
		updates["description"] = metadata.Overview
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	if movie.ReleaseDate == nil && metadata.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", metadata.ReleaseDate); err == nil {
			updates["release_date"] = t
			fieldsUpdated = append(fieldsUpdated, "release_date")
		}
	}

	if movie.Runtime == 0 && metadata.Runtime > 0 {
		updates["runtime"] = int64(metadata.Runtime)
		fieldsUpdated = append(fieldsUpdated, "runtime")
	}

	if movie.Budget == 0 && metadata.Budget > 0 {
		updates["budget"] = metadata.Budget
		fieldsUpdated = append(fieldsUpdated, "budget")
	}

	if movie.Revenue == 0 && metadata.Revenue > 0 {
		updates["revenue"] = metadata.Revenue
		fieldsUpdated = append(fieldsUpdated, "revenue")
	}

	if movie.Language == "" && metadata.Language != "" {
		updates["language"] = metadata.Language
		fieldsUpdated = append(fieldsUpdated, "language")
	}

	if movie.Country == "" && metadata.Country != "" {
		updates["country"] = metadata.Country
		fieldsUpdated = append(fieldsUpdated, "country")
	}

	if metadata.PosterURL != "" && movie.PosterURL != metadata.PosterURL {
		updates["poster_url"] = metadata.PosterURL
		fieldsUpdated = append(fieldsUpdated, "poster_url")
	}

	if metadata.AvgRating > 0 && movie.AvgRating != metadata.AvgRating {
		updates["avg_rating"] = metadata.AvgRating
		fieldsUpdated = append(fieldsUpdated, "avg_rating")
	}

	return updates, fieldsUpdated
}
