package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"
)

// Config holds the settings for the task queue. Workers, ReleaseAfter
// and CleanupInterval configure the backlite client itself; the
// remaining fields form the retry policy the individual queues derive
// their QueueConfig from.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// MaxRetries is how many attempts a retryable queue makes.
	MaxRetries int

	// RetryDelay is how long a failed task is held before retrying.
	RetryDelay time.Duration

	// TaskTimeout bounds the execution of a single task.
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are cleaned up.
	CleanupInterval time.Duration

	// RetentionDuration is how long completed tasks are kept.
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// withDefaults fills zero fields so a partially populated Config cannot
// yield a queue that never retries or retains nothing.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = d.TaskTimeout
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.RetentionDuration <= 0 {
		c.RetentionDuration = d.RetentionDuration
	}
	return c
}

// queuePolicy is the retry policy the task Config() methods read.
// backlite captures a queue's QueueConfig from the zero task value at
// construction, so the queue constructors set this before calling
// backlite.NewQueue. Registration happens once at startup.
var queuePolicy = DefaultConfig()

// retention is the shared retention policy: keep rows for the configured
// duration, keep payloads only for failures.
func retention() *backlite.Retention {
	return &backlite.Retention{
		Duration:   queuePolicy.RetentionDuration,
		OnlyFailed: false,
		Data:       &backlite.RetainData{OnlyFailed: true},
	}
}
