package posters

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Cache handles local caching of movie poster images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new poster cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetPoster returns the cached poster for a movie, or fetches and caches it
// if not present. Returns the file path to the cached poster, or empty
// string if unavailable.
func (c *Cache) GetPoster(movieID uint, posterURL string) (string, error) {
	if posterURL == "" {
		return "", nil
	}

	filename := c.posterFilename(movieID, posterURL)
	cachePath := filepath.Join(c.cacheDir, filename)

	// Check if cached file exists
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	// Fetch and cache the poster
	if err := c.fetchAndCache(posterURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// InvalidatePoster removes the cached poster for a movie.
func (c *Cache) InvalidatePoster(movieID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("poster_%d_*", movieID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// posterFilename generates a unique filename based on movie ID and URL hash.
func (c *Cache) posterFilename(movieID uint, posterURL string) string {
	hash := sha256.Sum256([]byte(posterURL))
	return fmt.Sprintf("poster_%d_%x.jpg", movieID, hash[:8])
}

// fetchAndCache downloads a poster image and saves it to the cache.
func (c *Cache) fetchAndCache(url, cachePath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Filmrec/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch poster: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "poster_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	// Copy response body to temp file
	_, err = io.Copy(tmpFile, resp.Body)
	if err != nil {
		return err
	}

	tmpFile.Close()

	// Atomic rename
	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
