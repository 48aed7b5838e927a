package entities

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`

	// Saved Letterboxd feed URL for the scheduled RSS re-sync.
	// Empty until the user connects a profile.
	LetterboxdFeedURL string     `gorm:"size:500" json:"letterboxd_feed_url,omitempty"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
