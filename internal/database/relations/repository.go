// Package relations provides database operations for per-user movie
// relationships outside the import transaction.
package relations

import (
	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
)

// Repository handles MovieUser read operations for the HTTP layer.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new relations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HasData reports whether the user has any imported relationships.
func (r *Repository) HasData(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.MovieUser{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// ListForUser returns the user's relationships with movies preloaded,
// most recently updated first.
func (r *Repository) ListForUser(userID uint, limit, offset int) ([]entities.MovieUser, int64, error) {
	var relations []entities.MovieUser
	var total int64

	if err := r.db.Model(&entities.MovieUser{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&relations).Error
	return relations, total, err
}

// GetForUserAndMovie returns the single relationship for a (user, movie)
// pair, or gorm.ErrRecordNotFound.
func (r *Repository) GetForUserAndMovie(userID, movieID uint) (*entities.MovieUser, error) {
	var relation entities.MovieUser
	err := r.db.Preload("Movie").
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&relation).Error
	if err != nil {
		return nil, err
	}
	return &relation, nil
}
