package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/sfn101/book-manager/internal/metadata"
)

// BackfillEnrichmentTask sweeps the whole catalog for missing covers and
// author photos. Enqueued by the scheduler and by the admin API.
type BackfillEnrichmentTask struct {
	Covers       bool `json:"covers"`
	AuthorImages bool `json:"author_images"`
}

// Config returns the queue configuration for backfill tasks.
func (t BackfillEnrichmentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backfill_enrichment",
		MaxAttempts: 2,
		Backoff:     5 * time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   48 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackfillEnrichmentProcessor creates a processor function for backfill tasks.
func BackfillEnrichmentProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[BackfillEnrichmentTask] {
	return func(ctx context.Context, task BackfillEnrichmentTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		if task.Covers {
			result, err := enricher.BackfillCovers(ctx)
			if err != nil {
				return fmt.Errorf("backfill covers: %w", err)
			}
			log.Printf("[TASK] Cover backfill: %d processed, %d updated, %d not found, %d errors",
				result.Processed, result.Updated, result.NotFound, result.Errors)
		}

		if task.AuthorImages {
			result, err := enricher.BackfillAuthorImages(ctx)
			if err != nil {
				return fmt.Errorf("backfill author images: %w", err)
			}
			log.Printf("[TASK] Author image backfill: %d processed, %d updated, %d not found, %d errors",
				result.Processed, result.Updated, result.NotFound, result.Errors)
		}

		return nil
	}
}

// NewBackfillEnrichmentQueue creates a backlite queue for backfill tasks.
func NewBackfillEnrichmentQueue(enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(BackfillEnrichmentProcessor(enricher))
}
