package http

import (
	"github.com/filmrec/filmrec/internal/auth"
	"github.com/filmrec/filmrec/internal/database"
	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/database/relations"
	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/importers"
	"github.com/filmrec/filmrec/internal/posters"
	"github.com/filmrec/filmrec/internal/stats"
	"github.com/filmrec/filmrec/internal/tasks"
)

// RouterConfig contains all dependencies needed to create the HTTP
// router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	UserRepo     *users.Repository
	MovieRepo    *movies.Repository
	RelationRepo *relations.Repository

	// Authentication
	AuthService *auth.Service

	// Import pipeline
	Importer    *importers.Importer
	RSSImporter *importers.RSSImporter

	// Statistics
	StatsService *stats.Service

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Poster image cache (optional)
	PosterCache *posters.Cache

	// Application info
	Version string
}
