package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"

	"github.com/filmrec/filmrec/internal/metadata"
)

// EnrichCatalogTask triggers enrichment for all catalog entries that
// have never been matched against TMDb.
type EnrichCatalogTask struct {
	// Limit caps how many entries one run processes (0 = no cap).
	Limit int `json:"limit,omitempty"`
}

// Config returns the queue configuration for bulk enrichment tasks.
// A bulk run is never retried as a whole; re-enqueueing picks up where
// the last run left off because enriched entries leave the pool.
func (t EnrichCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_catalog",
		MaxAttempts: 1,
		Backoff:     queuePolicy.RetryDelay,
		Timeout:     12 * queuePolicy.TaskTimeout, // Allow time to work through the backlog
		Retention:   retention(),
	}
}

// EnrichCatalogProcessor creates a processor function for EnrichCatalogTask.
func EnrichCatalogProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[EnrichCatalogTask] {
	return func(ctx context.Context, task EnrichCatalogTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx, task.Limit)
		if err != nil {
			return fmt.Errorf("enrich catalog: %w", err)
		}

		log.Printf("[TASK] Catalog enrichment complete: %d total, %d enriched, %d skipped, %d failed",
			result.TotalMovies, result.Enriched, result.Skipped, result.Failed)

		return nil
	}
}

// NewEnrichCatalogQueue creates a backlite queue for bulk enrichment
// tasks using the given retry policy.
func NewEnrichCatalogQueue(enricher *metadata.Enricher, cfg Config) backlite.Queue {
	queuePolicy = cfg.withDefaults()
	return backlite.NewQueue(EnrichCatalogProcessor(enricher))
}
