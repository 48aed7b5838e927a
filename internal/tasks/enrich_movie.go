package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"

	"github.com/filmrec/filmrec/internal/metadata"
)

// EnrichMovieTask enriches a single catalog entry with TMDb metadata.
type EnrichMovieTask struct {
	MovieID uint `json:"movie_id"`
}

// Config returns the queue configuration for movie enrichment tasks,
// derived from the configured retry policy.
func (t EnrichMovieTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_movie",
		MaxAttempts: queuePolicy.MaxRetries,
		Backoff:     queuePolicy.RetryDelay,
		Timeout:     queuePolicy.TaskTimeout,
		Retention:   retention(),
	}
}

// EnrichMovieProcessor creates a processor function for EnrichMovieTask.
func EnrichMovieProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[EnrichMovieTask] {
	return func(ctx context.Context, task EnrichMovieTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichMovie(ctx, task.MovieID)
		if err != nil {
			if errors.Is(err, metadata.ErrNoMatch) {
				// Nothing to retry, TMDb simply does not know this film.
				log.Printf("[TASK] Movie %d: no TMDb match", task.MovieID)
				return nil
			}
			return fmt.Errorf("enrich movie %d: %w", task.MovieID, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[TASK] Enriched movie %d (%s): updated %v",
				task.MovieID, result.Movie.Title, result.FieldsUpdated)
		} else {
			log.Printf("[TASK] Movie %d (%s): no metadata updates needed",
				task.MovieID, result.Movie.Title)
		}

		return nil
	}
}

// NewEnrichMovieQueue creates a backlite queue for movie enrichment
// tasks using the given retry policy.
func NewEnrichMovieQueue(enricher *metadata.Enricher, cfg Config) backlite.Queue {
	queuePolicy = cfg.withDefaults()
	return backlite.NewQueue(EnrichMovieProcessor(enricher))
}
