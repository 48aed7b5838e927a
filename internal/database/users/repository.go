// Package users provides database operations for user accounts.
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/entities"
)

// Repository handles user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser persists a new user record.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by primary key.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetLetterboxdFeed saves the resolved feed URL used by the scheduled
// RSS re-sync. An empty URL disconnects the profile.
func (r *Repository) SetLetterboxdFeed(userID uint, feedURL string) error {
	return r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("letterboxd_feed_url", feedURL).Error
}

// TouchLastSync records the completion time of an RSS sync.
func (r *Repository) TouchLastSync(userID uint, at time.Time) error {
	return r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("last_sync_at", at).Error
}

// GetUsersWithFeed returns all users that have connected a Letterboxd
// profile, for the scheduler to iterate.
func (r *Repository) GetUsersWithFeed() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Where("letterboxd_feed_url <> ''").Find(&users).Error
	return users, err
}
