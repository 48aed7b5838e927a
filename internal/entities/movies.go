package entities

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// MaxTitleLength is the storage limit for movie titles. Import sources
// truncate to this before persisting.
const MaxTitleLength = 255

type WatchStatus string

const (
	WatchStatusWatched       WatchStatus = "Watched"
	WatchStatusWantToWatch   WatchStatus = "Want to Watch"
	WatchStatusNotInterested WatchStatus = "Not Interested"
)

type CreditRole string

const (
	CreditRoleActor    CreditRole = "actor"
	CreditRoleDirector CreditRole = "director"
)

// Movie is the shared, process-wide catalog entry for one film.
// At most one row exists per non-null LetterboxdURI; the unique index
// is the backstop for concurrent imports racing on the same URI.
type Movie struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"index;size:255" json:"title"`

	// TMDb-sourced metadata, filled by the enricher
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	AvgRating   float64    `gorm:"default:0" json:"avg_rating"`
	Budget      int64      `json:"budget,omitempty"`
	Revenue     int64      `json:"revenue,omitempty"`
	Runtime     int64      `json:"runtime,omitempty"`
	Language    string     `gorm:"size:50" json:"language,omitempty"`
	Country     string     `gorm:"size:100" json:"country,omitempty"`
	PosterURL   string     `gorm:"size:500" json:"poster_url,omitempty"`

	// External identifiers
	LetterboxdURI *string `gorm:"uniqueIndex;size:500" json:"letterboxd_uri,omitempty"`
	TMDBID        *int    `gorm:"uniqueIndex" json:"tmdb_id,omitempty"`

	Genres []Genre `gorm:"many2many:movie_genres;" json:"genres,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Person is a reference entity for actors and directors. The role is
// carried on the credit, not the person.
type Person struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"index;size:255" json:"name"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	ProfileURL string     `gorm:"size:500" json:"profile_url,omitempty"`
	Biography  string     `gorm:"type:text" json:"biography,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MovieCredit links a person to a movie in a given role.
type MovieCredit struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MovieID       uint       `gorm:"uniqueIndex:uniq_movie_person_role" json:"movie_id"`
	PersonID      uint       `gorm:"uniqueIndex:uniq_movie_person_role" json:"person_id"`
	Role          CreditRole `gorm:"uniqueIndex:uniq_movie_person_role;size:20" json:"role"`
	CharacterName string     `gorm:"size:255" json:"character_name,omitempty"`
	CastingOrder  int        `json:"casting_order,omitempty"`

	Movie  Movie  `gorm:"foreignKey:MovieID" json:"-"`
	Person Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100" json:"name"`
}

// MovieUser is one user's relationship to one movie: watch status,
// rating, review and the watchlist/liked flags. At most one row exists
// per (user, movie) pair; imports mutate it in place, never duplicate it.
type MovieUser struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	MovieID uint `gorm:"uniqueIndex:uniq_user_movie" json:"movie_id"`
	UserID  uint `gorm:"uniqueIndex:uniq_user_movie" json:"user_id"`

	WatchStatus WatchStatus `gorm:"size:50" json:"watch_status,omitempty"`
	WatchedDate *time.Time  `json:"watched_date,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	Review      string      `gorm:"type:text" json:"review,omitempty"`
	Liked       bool        `gorm:"default:false" json:"liked"`
	InWatchlist bool        `gorm:"default:false" json:"in_watchlist"`
	Rewatch     bool        `gorm:"default:false" json:"rewatch"`

	Movie Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TruncateTitle trims a source-supplied title to the storage limit,
// cutting on a rune boundary so a multi-byte character is never split.
func TruncateTitle(title string) string {
	if len(title) <= MaxTitleLength {
		return title
	}
	cut := MaxTitleLength
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}
