package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
	"github.com/filmrec/filmrec/internal/letterboxd"
)

var (
	// ErrInvalidFeedInput means the supplied profile reference could not
	// be resolved to a feed URL.
	ErrInvalidFeedInput = errors.New("invalid rss input")
	// ErrFeedUnavailable means the resolved feed could not be fetched or
	// parsed; no entries were processed.
	ErrFeedUnavailable = errors.New("could not read rss feed")
)

// RSSCounters summarizes one feed sync. Field names follow the JSON
// contract of the RSS endpoint.
type RSSCounters struct {
	FeedURL              string `json:"rss_url"`
	EntriesProcessed     int    `json:"entries_processed"`
	MoviesCreated        int    `json:"movies_created"`
	RelationshipsCreated int    `json:"movieuser_created"`
	RelationshipsUpdated int    `json:"movieuser_updated"`
}

// RSSImporter syncs recent watches from a public Letterboxd profile feed.
type RSSImporter struct {
	db      *gorm.DB
	fetcher letterboxd.FeedFetcher
}

// NewRSSImporter creates an RSS importer using the given feed fetcher.
func NewRSSImporter(db *gorm.DB, fetcher letterboxd.FeedFetcher) *RSSImporter {
	return &RSSImporter{db: db, fetcher: fetcher}
}

// ResolveFeedURL resolves a free-form profile reference without syncing.
// Returns ErrInvalidFeedInput when the reference is unusable.
func (s *RSSImporter) ResolveFeedURL(reference string) (string, error) {
	feedURL := letterboxd.BuildFeedURL(reference)
	if feedURL == "" {
		return "", ErrInvalidFeedInput
	}
	return feedURL, nil
}

// Sync fetches the profile feed and reconciles every entry for the user
// inside one transaction. The feed is validated before any row work
// starts: an unreadable feed fails the call without partial state.
//
// Entry links are already canonical film URLs, so they key the catalog
// verbatim with no slug re-derivation. Entries mark the film watched and
// carry the published time over as the watched date when it differs.
func (s *RSSImporter) Sync(ctx context.Context, userID uint, reference string) (*RSSCounters, error) {
	feedURL, err := s.ResolveFeedURL(reference)
	if err != nil {
		return nil, err
	}

	feed, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	counters := &RSSCounters{FeedURL: feedURL}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range feed.Items {
			link := strings.TrimSpace(entry.Link)
			if link == "" {
				continue
			}

			movie, created, err := findOrCreateMovieByLink(tx, link, entry.Title)
			if err != nil {
				return err
			}
			if created {
				counters.MoviesCreated++
			}

			relation, relCreated, err := getOrCreateRSSRelation(tx, userID, movie.ID)
			if err != nil {
				return err
			}
			if relCreated {
				counters.RelationshipsCreated++
			}

			changes := relationChanges{}
			if relation.WatchStatus != entities.WatchStatusWatched {
				watched := entities.WatchStatusWatched
				changes.WatchStatus = &watched
			}
			if watchedAt := letterboxd.EntryWatchedAt(entry); watchedAt != nil && !timesEqual(relation.WatchedDate, watchedAt) {
				changes.WatchedDate = watchedAt
			}

			if changes.apply(relation) {
				if err := tx.Save(relation).Error; err != nil {
					return err
				}
				if !relCreated {
					counters.RelationshipsUpdated++
				}
			}

			counters.EntriesProcessed++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("letterboxd rss sync: %w", err)
	}

	return counters, nil
}

// findOrCreateMovieByLink keys the catalog by the entry link verbatim.
// The entry title is applied only on creation, truncated to the storage
// limit; existing titles are left alone.
func findOrCreateMovieByLink(tx *gorm.DB, link, title string) (*entities.Movie, bool, error) {
	var movie entities.Movie
	err := tx.Where("letterboxd_uri = ?", link).First(&movie).Error
	if err == nil {
		return &movie, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	movie = entities.Movie{
		Title:         entities.TruncateTitle(strings.TrimSpace(title)),
		LetterboxdURI: &link,
	}
	if err := tx.Create(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("letterboxd_uri = ?", link).First(&movie).Error; err != nil {
				return nil, false, err
			}
			return &movie, false, nil
		}
		return nil, false, err
	}
	return &movie, true, nil
}

// getOrCreateRSSRelation mirrors getOrCreateRelation without touching the
// CSV counters; the RSS path tracks its own.
func getOrCreateRSSRelation(tx *gorm.DB, userID, movieID uint) (*entities.MovieUser, bool, error) {
	var scratch Counters
	relation, created, err := getOrCreateRelation(tx, userID, movieID, &scratch)
	return relation, created, err
}
