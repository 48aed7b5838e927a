package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/database/relations"
	"github.com/filmrec/filmrec/internal/letterboxd"
)

const defaultMovieListLimit = 50

// MoviesController serves the user's imported movie relationships.
type MoviesController struct {
	relations *relations.Repository
	movies    *movies.Repository
}

// NewMoviesController creates a new MoviesController.
func NewMoviesController(relationRepo *relations.Repository, movieRepo *movies.Repository) *MoviesController {
	return &MoviesController{
		relations: relationRepo,
		movies:    movieRepo,
	}
}

// movieListResponse is the paginated payload for the movie list.
type movieListResponse struct {
	Movies  any   `json:"movies"`
	Total   int64 `json:"total"`
	HasData bool  `json:"has_data"`
}

// List returns the user's relationships with movies preloaded, most
// recently updated first.
// GET /api/movies?limit=50&offset=0
func (mc *MoviesController) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultMovieListLimit)))
	if err != nil || limit < 0 {
		respondBadRequest(c, "invalid limit")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondBadRequest(c, "invalid offset")
		return
	}

	hasData, err := mc.relations.HasData(userID)
	if err != nil {
		respondInternalError(c, err, "check user data")
		return
	}

	entries, total, err := mc.relations.ListForUser(userID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list movies")
		return
	}

	c.JSON(http.StatusOK, movieListResponse{
		Movies:  entries,
		Total:   total,
		HasData: hasData,
	})
}

// Get returns the user's relationship with a single movie.
// GET /api/movies/:id
func (mc *MoviesController) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid movie id")
		return
	}

	relation, err := mc.relations.GetForUserAndMovie(userID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "movie")
			return
		}
		respondInternalError(c, err, "get movie")
		return
	}

	c.JSON(http.StatusOK, relation)
}

// Lookup resolves a Letterboxd film reference to a catalog entry.
// GET /api/movies/lookup?uri=https://letterboxd.com/film/arrival/
func (mc *MoviesController) Lookup(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	canonical, ok := letterboxd.NormalizeFilmURI(c.Query("uri"))
	if !ok {
		respondBadRequest(c, "invalid letterboxd uri")
		return
	}

	movie, err := mc.movies.GetMovieByLetterboxdURI(canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "movie")
			return
		}
		respondInternalError(c, err, "lookup movie")
		return
	}

	c.JSON(http.StatusOK, movie)
}
