package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/filmrec/filmrec/internal/config"
)

var (
	ErrNotConfigured = errors.New("TMDb API key is not configured")
	ErrNoMatch       = errors.New("no matching movie found")
	ErrRateLimited   = errors.New("TMDb API rate limited")
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// MovieMetadata contains enriched movie information from TMDb.
type MovieMetadata struct {
	TMDBID      int      `json:"tmdb_id"`
	Title       string   `json:"title,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
	Budget      int64    `json:"budget,omitempty"`
	Revenue     int64    `json:"revenue,omitempty"`
	Language    string   `json:"language,omitempty"`
	Country     string   `json:"country,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	AvgRating   float64  `json:"avg_rating,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Cast        []string `json:"cast,omitempty"`
}

// TMDBClient fetches movie metadata from the TMDb API.
type TMDBClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewTMDBClient creates a new TMDb API client with rate limiting.
func NewTMDBClient(cfg config.TMDB) *TMDBClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TMDBClient{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		rateLimiter: newRateLimiter(250 * time.Millisecond),
	}
}

// IsConfigured returns true if the API key is set.
func (c *TMDBClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SearchMovie looks up a movie by title with an optional release year and
// returns the first result.
func (c *TMDBClient) SearchMovie(ctx context.Context, title string, year int) (*MovieMetadata, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", fmt.Sprintf("%d", year))
	}

	var response tmdbSearchResponse
	if err := c.doRequest(ctx, "/search/movie", params, &response); err != nil {
		return nil, err
	}

	if len(response.Results) == 0 {
		return nil, ErrNoMatch
	}

	best := response.Results[0]
	return &MovieMetadata{
		TMDBID:      best.ID,
		Title:       best.Title,
		Overview:    best.Overview,
		ReleaseDate: best.ReleaseDate,
		AvgRating:   best.VoteAverage,
		PosterURL:   posterURL(best.PosterPath),
	}, nil
}

// GetMovieDetails fetches full movie details, including genres and credits,
// by TMDb ID.
func (c *TMDBClient) GetMovieDetails(ctx context.Context, tmdbID int) (*MovieMetadata, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("append_to_response", "credits")

	var details tmdbMovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", tmdbID), params, &details); err != nil {
		return nil, err
	}

	return c.convertDetails(&details), nil
}

func (c *TMDBClient) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	c.rateLimiter.wait()

	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch TMDb data: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNoMatch
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *TMDBClient) convertDetails(details *tmdbMovieDetails) *MovieMetadata {
	metadata := &MovieMetadata{
		TMDBID:      details.ID,
		Title:       details.Title,
		Overview:    details.Overview,
		ReleaseDate: details.ReleaseDate,
		Runtime:     details.Runtime,
		Budget:      details.Budget,
		Revenue:     details.Revenue,
		Language:    details.OriginalLanguage,
		AvgRating:   details.VoteAverage,
		PosterURL:   posterURL(details.PosterPath),
	}

	if len(details.ProductionCountries) > 0 {
		metadata.Country = details.ProductionCountries[0].Name
	}

	for _, g := range details.Genres {
		metadata.Genres = append(metadata.Genres, g.Name)
	}

	for _, member := range details.Credits.Crew {
		if member.Job == "Director" {
			metadata.Directors = append(metadata.Directors, member.Name)
		}
	}

	// Top-billed cast only, the full list runs into the dozens.
	cast := details.Credits.Cast
	if len(cast) > 10 {
		cast = cast[:10]
	}
	for _, member := range cast {
		metadata.Cast = append(metadata.Cast, member.Name)
	}

	return metadata
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

// TMDb API response types (internal)

type tmdbSearchResponse struct {
	Results []tmdbSearchResult `json:"results"`
}

type tmdbSearchResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
}

type tmdbMovieDetails struct {
	ID                  int           `json:"id"`
	Title               string        `json:"title"`
	Overview            string        `json:"overview"`
	ReleaseDate         string        `json:"release_date"`
	Runtime             int           `json:"runtime"`
	Budget              int64         `json:"budget"`
	Revenue             int64         `json:"revenue"`
	OriginalLanguage    string        `json:"original_language"`
	VoteAverage         float64       `json:"vote_average"`
	PosterPath          string        `json:"poster_path"`
	Genres              []tmdbGenre   `json:"genres"`
	ProductionCountries []tmdbCountry `json:"production_countries"`
	Credits             tmdbCredits   `json:"credits"`
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbCountry struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

type tmdbCredits struct {
	Cast []tmdbCastMember `json:"cast"`
	Crew []tmdbCrewMember `json:"crew"`
}

type tmdbCastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type tmdbCrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}
