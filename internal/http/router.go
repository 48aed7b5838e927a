// Package http wires the JSON API: registration and login, Letterboxd
// imports and feed syncs, and the statistics endpoints.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	authController := auth.NewController(cfg.AuthService)
	router.POST("/api/register", authController.Register)
	router.POST("/api/login", authController.Login)

	// Everything below requires a bearer token.
	api := router.Group("/api")
	api.Use(auth.NewMiddleware(cfg.AuthService).Handler())

	api.GET("/ping", authController.Ping)

	importController := NewImportController(cfg.Importer, cfg.TaskClient)
	api.POST("/letterboxd/import", importController.Import)

	rssController := NewRSSController(cfg.RSSImporter, cfg.UserRepo)
	api.POST("/letterboxd/rss", rssController.Sync)
	api.POST("/letterboxd/connect", rssController.Connect)
	api.DELETE("/letterboxd/connect", rssController.Disconnect)

	statsController := NewStatsController(cfg.StatsService)
	api.GET("/stats", statsController.Weekly)
	api.GET("/stats/all-time", statsController.AllTime)

	moviesController := NewMoviesController(cfg.RelationRepo, cfg.MovieRepo)
	api.GET("/movies", moviesController.List)
	api.GET("/movies/lookup", moviesController.Lookup)
	api.GET("/movies/:id", moviesController.Get)

	if cfg.PosterCache != nil {
		postersController := NewPostersController(cfg.PosterCache, cfg.MovieRepo)
		api.GET("/movies/:id/poster", postersController.GetPoster)
	}

	return router
}
