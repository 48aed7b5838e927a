package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// testTask is a minimal task used to exercise the queue plumbing.
type testTask struct {
	Value string `json:"value"`
}

func (t testTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task testTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(testTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

// resetQueuePolicy restores the package retry policy after a test
// that builds queues with a custom Config.
func resetQueuePolicy(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { queuePolicy = DefaultConfig() })
}

func TestEnrichMovieTaskConfig(t *testing.T) {
	resetQueuePolicy(t)

	cfg := DefaultConfig()
	cfg.MaxRetries = 5
	cfg.RetryDelay = 2 * time.Minute
	cfg.TaskTimeout = 90 * time.Second
	cfg.RetentionDuration = 48 * time.Hour
	NewEnrichMovieQueue(nil, cfg)

	qc := EnrichMovieTask{MovieID: 123}.Config()
	assert.Equal(t, "enrich_movie", qc.Name)
	assert.Equal(t, 5, qc.MaxAttempts)
	assert.Equal(t, 2*time.Minute, qc.Backoff)
	assert.Equal(t, 90*time.Second, qc.Timeout)
	require.NotNil(t, qc.Retention)
	assert.Equal(t, 48*time.Hour, qc.Retention.Duration)
}

func TestEnrichCatalogTaskConfig(t *testing.T) {
	resetQueuePolicy(t)

	cfg := DefaultConfig()
	cfg.TaskTimeout = 5 * time.Minute
	NewEnrichCatalogQueue(nil, cfg)

	qc := EnrichCatalogTask{Limit: 50}.Config()
	assert.Equal(t, "enrich_catalog", qc.Name)
	assert.Equal(t, 1, qc.MaxAttempts, "bulk runs are never retried as a whole")
	assert.Equal(t, 60*time.Minute, qc.Timeout)
}

func TestFeedSyncTaskConfig(t *testing.T) {
	resetQueuePolicy(t)

	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.TaskTimeout = 3 * time.Minute
	NewFeedSyncQueue(nil, nil, cfg)

	qc := FeedSyncTask{UserID: 7}.Config()
	assert.Equal(t, "feed_sync", qc.Name)
	assert.Equal(t, 2, qc.MaxAttempts)
	assert.Equal(t, 3*time.Minute, qc.Timeout)
}

func TestQueueConfigDefaults(t *testing.T) {
	resetQueuePolicy(t)

	// Zero fields fall back to the defaults during registration.
	NewEnrichMovieQueue(nil, Config{Workers: 1})

	qc := EnrichMovieTask{MovieID: 1}.Config()
	assert.Equal(t, DefaultConfig().MaxRetries, qc.MaxAttempts)
	assert.Equal(t, DefaultConfig().RetryDelay, qc.Backoff)
	assert.Equal(t, DefaultConfig().TaskTimeout, qc.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
