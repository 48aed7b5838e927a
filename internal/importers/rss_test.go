package importers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmrec/filmrec/internal/entities"
	"github.com/filmrec/filmrec/internal/letterboxd"
)

type stubFetcher struct {
	feed       *gofeed.Feed
	err        error
	fetchedURL string
}

func (s *stubFetcher) Fetch(_ context.Context, feedURL string) (*gofeed.Feed, error) {
	s.fetchedURL = feedURL
	if s.err != nil {
		return nil, s.err
	}
	return s.feed, nil
}

func feedWithItems(items ...*gofeed.Item) *gofeed.Feed {
	return &gofeed.Feed{Title: "Alice's films", Items: items}
}

func watchedItem(link, title string, published time.Time) *gofeed.Item {
	return &gofeed.Item{
		Link:            link,
		Title:           title,
		PublishedParsed: &published,
	}
}

func TestRSSImporter_SyncCreatesWatchedEntries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	published := time.Date(2023, time.May, 1, 20, 15, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		watchedItem("https://letterboxd.com/film/arrival/", "Arrival, 2016", published),
		watchedItem("https://letterboxd.com/film/stalker/", "Stalker, 1979", published.Add(-24*time.Hour)),
	)}

	counters, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)

	assert.Equal(t, "https://letterboxd.com/alice/rss/", fetcher.fetchedURL)
	assert.Equal(t, "https://letterboxd.com/alice/rss/", counters.FeedURL)
	assert.Equal(t, 2, counters.EntriesProcessed)
	assert.Equal(t, 2, counters.MoviesCreated)
	assert.Equal(t, 2, counters.RelationshipsCreated)
	assert.Equal(t, 0, counters.RelationshipsUpdated)

	var relation entities.MovieUser
	require.NoError(t, db.Preload("Movie").
		Joins("JOIN movies ON movies.id = movie_users.movie_id").
		Where("movies.letterboxd_uri = ?", "https://letterboxd.com/film/arrival/").
		First(&relation).Error)
	assert.Equal(t, entities.WatchStatusWatched, relation.WatchStatus)
	require.NotNil(t, relation.WatchedDate)
	assert.Equal(t, 2023, relation.WatchedDate.Year())
	assert.Equal(t, "Arrival, 2016", relation.Movie.Title)
}

func TestRSSImporter_ProcessesEveryEntry(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	published := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		watchedItem("https://letterboxd.com/film/a/", "A", published),
		watchedItem("https://letterboxd.com/film/b/", "B", published),
		watchedItem("https://letterboxd.com/film/c/", "C", published),
	)}

	counters, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)

	assert.Equal(t, 3, counters.EntriesProcessed)
	assert.Equal(t, 3, counters.MoviesCreated)

	var movieCount int64
	db.Model(&entities.Movie{}).Count(&movieCount)
	assert.Equal(t, int64(3), movieCount)
}

func TestRSSImporter_SecondSyncIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	published := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		watchedItem("https://letterboxd.com/film/arrival/", "Arrival", published),
	)}
	importer := NewRSSImporter(db, fetcher)

	_, err := importer.Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)

	counters, err := importer.Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, counters.EntriesProcessed)
	assert.Equal(t, 0, counters.MoviesCreated)
	assert.Equal(t, 0, counters.RelationshipsCreated)
	assert.Equal(t, 0, counters.RelationshipsUpdated)
}

func TestRSSImporter_EntriesWithoutLinkAreSkipped(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	published := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		&gofeed.Item{Title: "No link here", PublishedParsed: &published},
		watchedItem("https://letterboxd.com/film/arrival/", "Arrival", published),
	)}

	counters, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, counters.EntriesProcessed)
	assert.Equal(t, 1, counters.MoviesCreated)
}

func TestRSSImporter_ConvergesOnCatalogEntryFromCSVImport(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	// A prior CSV import created the catalog entry under the same
	// canonical URI that RSS entry links carry verbatim.
	_, err := NewImporter(db).Run(user.ID, Sources{Reviews: []letterboxd.Row{arrivalReviewRow()}})
	require.NoError(t, err)

	published := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		watchedItem("https://letterboxd.com/film/arrival/", "Arrival, 2016", published),
	)}

	counters, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, counters.MoviesCreated)

	var movieCount int64
	db.Model(&entities.Movie{}).Count(&movieCount)
	assert.Equal(t, int64(1), movieCount)

	// The CSV title wins; RSS applies titles only on creation.
	var movie entities.Movie
	require.NoError(t, db.First(&movie).Error)
	assert.Equal(t, "Arrival", movie.Title)
}

func TestRSSImporter_LostCreateRaceConvergesOnExistingMovie(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	uri := "https://letterboxd.com/film/arrival/"
	raced := injectConflictingMovie(t, db, uri)

	published := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{feed: feedWithItems(
		watchedItem(uri, "Arrival, 2016", published),
	)}

	counters, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.NoError(t, err)
	require.True(t, *raced)

	assert.Equal(t, 1, counters.EntriesProcessed)
	assert.Equal(t, 0, counters.MoviesCreated)
	assert.Equal(t, 1, counters.RelationshipsCreated)

	var movieCount int64
	db.Model(&entities.Movie{}).Count(&movieCount)
	assert.Equal(t, int64(1), movieCount)
}

func TestRSSImporter_InvalidReferenceRejectedBeforeFetch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	fetcher := &stubFetcher{}
	_, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "   ")
	require.ErrorIs(t, err, ErrInvalidFeedInput)
	assert.Empty(t, fetcher.fetchedURL)
}

func TestRSSImporter_UnreadableFeedFailsBeforeAnyRowWork(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	user := createTestUser(t, db, "alice")

	fetcher := &stubFetcher{err: errors.New("connection refused")}
	_, err := NewRSSImporter(db, fetcher).Sync(context.Background(), user.ID, "alice")
	require.ErrorIs(t, err, ErrFeedUnavailable)

	var movieCount int64
	db.Model(&entities.Movie{}).Count(&movieCount)
	assert.Equal(t, int64(0), movieCount)
}
