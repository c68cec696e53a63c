// Package scheduler runs periodic catalog maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/sfn101/book-manager/internal/tasks"
)

// TaskEnqueuer enqueues background tasks.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// Config controls the enrichment sync scheduler.
type Config struct {
	Enabled  bool
	Schedule string
}

// EnrichmentSyncScheduler periodically enqueues a backfill sweep that
// fetches missing covers and author photos.
type EnrichmentSyncScheduler struct {
	queue  TaskEnqueuer
	config Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewEnrichmentSyncScheduler creates a new scheduler instance.
func NewEnrichmentSyncScheduler(queue TaskEnqueuer, cfg Config) *EnrichmentSyncScheduler {
	return &EnrichmentSyncScheduler{
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if enrichment sync is enabled.
func (s *EnrichmentSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Enrichment sync scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueueSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Enrichment sync scheduler: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *EnrichmentSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Enrichment sync scheduler: stopped")
}

// RunNow enqueues an immediate sweep.
func (s *EnrichmentSyncScheduler) RunNow() error {
	return s.enqueueSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *EnrichmentSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will be enqueued.
func (s *EnrichmentSyncScheduler) GetNextRunTime() *time.Time {
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

func (s *EnrichmentSyncScheduler) enqueueSweep() error {
	_, err := s.queue.Add(tasks.BackfillEnrichmentTask{
		Covers:       true,
		AuthorImages: true,
	}).Save()
	if err != nil {
		log.Printf("Enrichment sync: failed to enqueue sweep: %v", err)
		return err
	}

	log.Printf("Enrichment sync: backfill sweep enqueued")
	return nil
}
