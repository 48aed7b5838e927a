// Package scheduler runs the periodic Letterboxd feed re-sync.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/filmrec/filmrec/internal/config"
	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/tasks"
)

// FeedSyncScheduler periodically enqueues feed sync tasks for every
// user with a connected Letterboxd feed.
type FeedSyncScheduler struct {
	userRepo *users.Repository
	queue    *tasks.Client
	cfg      config.Letterboxd

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewFeedSyncScheduler creates a new scheduler instance.
func NewFeedSyncScheduler(userRepo *users.Repository, queue *tasks.Client, cfg config.Letterboxd) *FeedSyncScheduler {
	return &FeedSyncScheduler{
		userRepo: userRepo,
		queue:    queue,
		cfg:      cfg,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if periodic sync is enabled.
func (s *FeedSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.SyncEnabled {
		log.Printf("Feed sync scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.SyncSchedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.SyncSchedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Feed sync scheduler: started with schedule '%s'", s.cfg.SyncSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sync pass
// to complete.
func (s *FeedSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Feed sync scheduler: stopped")
}

// RunNow triggers an immediate sync pass.
func (s *FeedSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active.
func (s *FeedSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync pass will occur.
func (s *FeedSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync enqueues one feed sync task per connected user. The tasks
// carry the actual fetch work so a slow feed never blocks the tick.
func (s *FeedSyncScheduler) runSync() {
	connected, err := s.userRepo.GetUsersWithFeed()
	if err != nil {
		log.Printf("Feed sync: failed to list connected users: %v", err)
		return
	}

	if len(connected) == 0 {
		log.Printf("Feed sync: no users with a connected feed")
		return
	}

	enqueued := 0
	for _, user := range connected {
		if _, err := s.queue.Add(tasks.FeedSyncTask{UserID: user.ID}).Save(); err != nil {
			log.Printf("Feed sync: failed to enqueue sync for user %d: %v", user.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Feed sync: enqueued %d of %d connected users", enqueued, len(connected))
}
