package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/posters"
)

// PostersController handles movie poster requests.
type PostersController struct {
	cache  *posters.Cache
	movies *movies.Repository
}

// NewPostersController creates a new PostersController.
func NewPostersController(cache *posters.Cache, repo *movies.Repository) *PostersController {
	return &PostersController{
		cache:  cache,
		movies: repo,
	}
}

// GetPoster serves a cached movie poster image.
// GET /api/movies/:id/poster
func (pc *PostersController) GetPoster(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	movie, err := pc.movies.GetMovieByID(uint(id))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if movie.PosterURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached poster (will fetch if not cached)
	cachePath, err := pc.cache.GetPoster(uint(id), movie.PosterURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, movie.PosterURL)
		return
	}

	// Serve the cached file
	c.File(cachePath)
}
