// Package movies provides database operations for the shared movie catalog.
package movies

import (
	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
)

// Repository handles catalog database operations outside the import
// transaction (lookups, metadata updates).
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new movies repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMovieByID retrieves a movie by its primary key.
func (r *Repository) GetMovieByID(id uint) (*entities.Movie, error) {
	var movie entities.Movie
	if err := r.db.Preload("Genres").First(&movie, id).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetMovieByLetterboxdURI retrieves a movie by its canonical URI.
func (r *Repository) GetMovieByLetterboxdURI(uri string) (*entities.Movie, error) {
	var movie entities.Movie
	if err := r.db.Where("letterboxd_uri = ?", uri).First(&movie).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetMoviesMissingMetadata returns movies that have never been matched
// against TMDb, oldest first.
func (r *Repository) GetMoviesMissingMetadata(limit int) ([]entities.Movie, error) {
	var movies []entities.Movie
	query := r.db.Where("tmdb_id IS NULL").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&movies).Error
	return movies, err
}

// UpdateMovieMetadata applies a partial column update to one movie.
func (r *Repository) UpdateMovieMetadata(id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&entities.Movie{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceGenres sets the movie's genre associations, creating genres
// that do not exist yet.
func (r *Repository) ReplaceGenres(movieID uint, names []string) error {
	var movie entities.Movie
	if err := r.db.First(&movie, movieID).Error; err != nil {
		return err
	}

	genres := make([]entities.Genre, 0, len(names))
	for _, name := range names {
		var genre entities.Genre
		err := r.db.Where("name = ?", name).FirstOrCreate(&genre, entities.Genre{Name: name}).Error
		if err != nil {
			return err
		}
		genres = append(genres, genre)
	}

	return r.db.Model(&movie).Association("Genres").Replace(genres)
}

// ReplaceCredits replaces the movie's credits for one role, creating
// people that do not exist yet. Casting order follows the input slice.
func (r *Repository) ReplaceCredits(movieID uint, role entities.CreditRole, names []string) error {
	err := r.db.Where("movie_id = ? AND role = ?", movieID, role).
		Delete(&entities.MovieCredit{}).Error
	if err != nil {
		return err
	}

	for i, name := range names {
		var person entities.Person
		err := r.db.Where("name = ?", name).FirstOrCreate(&person, entities.Person{Name: name}).Error
		if err != nil {
			return err
		}

		credit := entities.MovieCredit{
			MovieID:      movieID,
			PersonID:     person.ID,
			Role:         role,
			CastingOrder: i,
		}
		if err := r.db.Create(&credit).Error; err != nil {
			return err
		}
	}

	return nil
}
