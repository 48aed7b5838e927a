package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/importers"
)

// FeedSyncTask pulls one user's Letterboxd RSS feed and applies the
// entries to their watch history.
type FeedSyncTask struct {
	UserID uint `json:"user_id"`
}

// Config returns the queue configuration for feed sync tasks, derived
// from the configured retry policy.
func (t FeedSyncTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "feed_sync",
		MaxAttempts: queuePolicy.MaxRetries,
		Backoff:     queuePolicy.RetryDelay,
		Timeout:     queuePolicy.TaskTimeout,
		Retention:   retention(),
	}
}

// FeedSyncProcessor creates a processor function for FeedSyncTask.
// Users without a connected feed are skipped, not retried.
func FeedSyncProcessor(rss *importers.RSSImporter, userRepo *users.Repository) backlite.QueueProcessor[FeedSyncTask] {
	return func(ctx context.Context, task FeedSyncTask) error {
		if rss == nil || userRepo == nil {
			return fmt.Errorf("feed sync not configured")
		}

		user, err := userRepo.GetUserByID(task.UserID)
		if err != nil {
			return fmt.Errorf("get user %d: %w", task.UserID, err)
		}

		if user.LetterboxdFeedURL == "" {
			log.Printf("[TASK] User %d has no Letterboxd feed connected, skipping sync", task.UserID)
			return nil
		}

		counters, err := rss.Sync(ctx, user.ID, user.LetterboxdFeedURL)
		if err != nil {
			return fmt.Errorf("sync feed for user %d: %w", task.UserID, err)
		}

		if err := userRepo.TouchLastSync(user.ID, time.Now()); err != nil {
			return fmt.Errorf("record sync time for user %d: %w", task.UserID, err)
		}

		log.Printf("[TASK] Feed sync for user %d: %d entries, %d movies created, %d relations created, %d updated",
			task.UserID, counters.EntriesProcessed, counters.MoviesCreated,
			counters.RelationshipsCreated, counters.RelationshipsUpdated)

		return nil
	}
}

// NewFeedSyncQueue creates a backlite queue for feed sync tasks using
// the given retry policy.
func NewFeedSyncQueue(rss *importers.RSSImporter, userRepo *users.Repository, cfg Config) backlite.Queue {
	queuePolicy = cfg.withDefaults()
	return backlite.NewQueue(FeedSyncProcessor(rss, userRepo))
}
