// Package stats provides the read-side queries that back the viewing
// statistics endpoints.
package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
)

// NameCount pairs a reference-entity name with a watch count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Totals aggregates a user's all-time numbers.
type Totals struct {
	Watched       int64    `json:"watched"`
	Liked         int64    `json:"liked"`
	InWatchlist   int64    `json:"in_watchlist"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// Repository handles statistics queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WatchedBetween returns the user's watched entries within the half-open
// interval [start, end), movies preloaded.
func (r *Repository) WatchedBetween(userID uint, start, end time.Time) ([]entities.MovieUser, error) {
	var entries []entities.MovieUser
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Where("watch_status = ?", entities.WatchStatusWatched).
		Where("watched_date IS NOT NULL").
		Where("watched_date >= ? AND watched_date < ?", start, end).
		Order("watched_date DESC").
		Find(&entries).Error
	return entries, err
}

// TopPeople returns the most-watched people in a credit role within the
// given window.
func (r *Repository) TopPeople(userID uint, role entities.CreditRole, start, end time.Time, limit int) ([]NameCount, error) {
	var results []NameCount
	err := r.db.Model(&entities.Person{}).
		Select("people.name AS name, COUNT(DISTINCT movie_users.id) AS count").
		Joins("JOIN movie_credits ON movie_credits.person_id = people.id AND movie_credits.role = ?", role).
		Joins("JOIN movie_users ON movie_users.movie_id = movie_credits.movie_id").
		Where("movie_users.user_id = ?", userID).
		Where("movie_users.watch_status = ?", entities.WatchStatusWatched).
		Where("movie_users.watched_date >= ? AND movie_users.watched_date < ?", start, end).
		Group("people.id").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

// TopGenres returns the most-watched genres within the given window.
func (r *Repository) TopGenres(userID uint, start, end time.Time, limit int) ([]NameCount, error) {
	var results []NameCount
	err := r.db.Model(&entities.Genre{}).
		Select("genres.name AS name, COUNT(DISTINCT movie_users.id) AS count").
		Joins("JOIN movie_genres ON movie_genres.genre_id = genres.id").
		Joins("JOIN movie_users ON movie_users.movie_id = movie_genres.movie_id").
		Where("movie_users.user_id = ?", userID).
		Where("movie_users.watch_status = ?", entities.WatchStatusWatched).
		Where("movie_users.watched_date >= ? AND movie_users.watched_date < ?", start, end).
		Group("genres.id").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

// AllTimeTotals returns the user's lifetime aggregates.
func (r *Repository) AllTimeTotals(userID uint) (*Totals, error) {
	totals := &Totals{}

	base := func() *gorm.DB {
		return r.db.Model(&entities.MovieUser{}).Where("user_id = ?", userID)
	}

	if err := base().Where("watch_status = ?", entities.WatchStatusWatched).Count(&totals.Watched).Error; err != nil {
		return nil, err
	}
	if err := base().Where("liked = ?", true).Count(&totals.Liked).Error; err != nil {
		return nil, err
	}
	if err := base().Where("in_watchlist = ?", true).Count(&totals.InWatchlist).Error; err != nil {
		return nil, err
	}

	var avg *float64
	err := base().Where("rating IS NOT NULL").Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	totals.AverageRating = avg

	return totals, nil
}
