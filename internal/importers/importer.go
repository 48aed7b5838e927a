package importers

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
	"github.com/filmrec/filmrec/internal/letterboxd"
)

// Counters summarizes one CSV import invocation. Field names follow the
// JSON contract of the import endpoint.
type Counters struct {
	MoviesCreated        int `json:"movies_created"`
	MoviesMatched        int `json:"movies_matched"`
	RelationshipsCreated int `json:"relationships_created"`
	RelationshipsUpdated int `json:"relationships_updated"`
}

// Sources carries the parsed rows of the up-to-three CSV exports of one
// import request. Any of the slices may be empty.
type Sources struct {
	Reviews   []letterboxd.Row
	Watchlist []letterboxd.Row
	Likes     []letterboxd.Row
}

// Empty reports whether no source was supplied at all.
func (s Sources) Empty() bool {
	return len(s.Reviews) == 0 && len(s.Watchlist) == 0 && len(s.Likes) == 0
}

// Importer drives CSV rows through the catalog reconciler and the
// relationship upserter.
type Importer struct {
	db *gorm.DB
}

// NewImporter creates an importer writing through the given database.
func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Run imports all supplied sources for one user inside a single
// transaction. Sources are processed in a fixed order (reviews, then
// watchlist, then likes) so later merge policies observe state set by
// earlier ones. A failure rolls back every change of the invocation;
// rows with unparseable film URIs are skipped, not failed.
func (i *Importer) Run(userID uint, src Sources) (*Counters, error) {
	counters := &Counters{}

	err := i.db.Transaction(func(tx *gorm.DB) error {
		if err := i.importReviews(tx, userID, src.Reviews, counters); err != nil {
			return err
		}
		if err := i.importWatchlist(tx, userID, src.Watchlist, counters); err != nil {
			return err
		}
		return i.importLikes(tx, userID, src.Likes, counters)
	})
	if err != nil {
		return nil, fmt.Errorf("letterboxd import: %w", err)
	}

	return counters, nil
}

// importReviews applies the diary/reviews merge policy: every row marks
// the film watched; date, rating and review are set only when the row
// carries a parseable value (sparse update).
func (i *Importer) importReviews(tx *gorm.DB, userID uint, rows []letterboxd.Row, c *Counters) error {
	for _, row := range rows {
		movie, err := upsertMovie(tx, row.Name, row.Year, row.URI, c)
		if err != nil {
			return err
		}
		if movie == nil {
			continue
		}

		relation, _, err := getOrCreateRelation(tx, userID, movie.ID, c)
		if err != nil {
			return err
		}

		watched := entities.WatchStatusWatched
		changes := relationChanges{WatchStatus: &watched}
		if d := letterboxd.ParseExportDate(row.WatchedDate); d != nil {
			changes.WatchedDate = d
		}
		if r := letterboxd.ParseRating(row.Rating); r != nil {
			changes.Rating = r
		}
		if review := strings.TrimSpace(row.Review); review != "" {
			changes.Review = &review
		}

		if err := saveChanges(tx, relation, changes, c); err != nil {
			return err
		}
	}
	return nil
}

// importWatchlist applies the watchlist merge policy. A watchlist row
// must never downgrade a completed watch: the status moves to
// "Want to Watch" only when the relation has no watched date and is not
// already watched.
func (i *Importer) importWatchlist(tx *gorm.DB, userID uint, rows []letterboxd.Row, c *Counters) error {
	for _, row := range rows {
		movie, err := upsertMovie(tx, row.Name, row.Year, row.URI, c)
		if err != nil {
			return err
		}
		if movie == nil {
			continue
		}

		relation, _, err := getOrCreateRelation(tx, userID, movie.ID, c)
		if err != nil {
			return err
		}

		inWatchlist := true
		changes := relationChanges{InWatchlist: &inWatchlist}
		if relation.WatchedDate == nil && relation.WatchStatus != entities.WatchStatusWatched {
			want := entities.WatchStatusWantToWatch
			changes.WatchStatus = &want
		}

		if err := saveChanges(tx, relation, changes, c); err != nil {
			return err
		}
	}
	return nil
}

// importLikes applies the likes merge policy: set the liked flag, touch
// nothing else.
func (i *Importer) importLikes(tx *gorm.DB, userID uint, rows []letterboxd.Row, c *Counters) error {
	for _, row := range rows {
		movie, err := upsertMovie(tx, row.Name, row.Year, row.URI, c)
		if err != nil {
			return err
		}
		if movie == nil {
			continue
		}

		relation, _, err := getOrCreateRelation(tx, userID, movie.ID, c)
		if err != nil {
			return err
		}

		liked := true
		if err := saveChanges(tx, relation, relationChanges{Liked: &liked}, c); err != nil {
			return err
		}
	}
	return nil
}

// upsertMovie finds or creates the catalog entry for a raw film URI.
// Returns (nil, nil) when the URI cannot be canonicalized; the caller
// skips the row. An existing entry with a blank title gets the row's
// name back-filled as a single-column update.
//
// Creation is racy across concurrent imports; the unique index on
// letterboxd_uri is the backstop, and a duplicate-key failure is retried
// as a lookup.
func upsertMovie(tx *gorm.DB, name, year, rawURI string, c *Counters) (*entities.Movie, error) {
	uri, ok := letterboxd.NormalizeFilmURI(rawURI)
	if !ok {
		return nil, nil
	}

	name = strings.TrimSpace(name)

	var movie entities.Movie
	err := tx.Where("letterboxd_uri = ?", uri).First(&movie).Error
	if err == nil {
		c.MoviesMatched++
		if movie.Title == "" && name != "" {
			movie.Title = entities.TruncateTitle(name)
			if err := tx.Model(&movie).Update("title", movie.Title).Error; err != nil {
				return nil, err
			}
		}
		return &movie, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	title := entities.TruncateTitle(name)
	if title == "" {
		title = "Unknown"
	}

	movie = entities.Movie{
		Title:         title,
		ReleaseDate:   letterboxd.YearToDate(year),
		LetterboxdURI: &uri,
	}
	if err := tx.Create(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the create race; the row exists now.
			if err := tx.Where("letterboxd_uri = ?", uri).First(&movie).Error; err != nil {
				return nil, err
			}
			c.MoviesMatched++
			return &movie, nil
		}
		return nil, err
	}

	c.MoviesCreated++
	return &movie, nil
}

// getOrCreateRelation returns the single relationship for the pair,
// creating a default one on first encounter. The bool reports whether a
// new record was created.
func getOrCreateRelation(tx *gorm.DB, userID, movieID uint, c *Counters) (*entities.MovieUser, bool, error) {
	var relation entities.MovieUser
	err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&relation).Error
	if err == nil {
		return &relation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	relation = entities.MovieUser{UserID: userID, MovieID: movieID}
	if err := tx.Create(&relation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&relation).Error; err != nil {
				return nil, false, err
			}
			return &relation, false, nil
		}
		return nil, false, err
	}

	c.RelationshipsCreated++
	return &relation, true, nil
}

// saveChanges applies the diff and persists at most once, counting an
// update only when a field actually changed.
func saveChanges(tx *gorm.DB, relation *entities.MovieUser, changes relationChanges, c *Counters) error {
	if !changes.apply(relation) {
		return nil
	}
	if err := tx.Save(relation).Error; err != nil {
		return err
	}
	c.RelationshipsUpdated++
	return nil
}
