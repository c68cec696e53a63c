package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/sfn101/book-manager/internal/entities"
	"github.com/sfn101/book-manager/internal/metadata"
)

// BookGetter loads a book for a queued task.
type BookGetter interface {
	GetByID(id uint) (*entities.Book, error)
}

// EnrichBookCoverTask fetches a cover for a single book.
type EnrichBookCoverTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for cover enrichment tasks.
func (t EnrichBookCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookCoverProcessor creates a processor function for cover tasks.
func EnrichBookCoverProcessor(enricher *metadata.Enricher, books BookGetter) backlite.QueueProcessor[EnrichBookCoverTask] {
	return func(ctx context.Context, task EnrichBookCoverTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		book, err := books.GetByID(task.BookID)
		if err != nil {
			return fmt.Errorf("get book %d: %w", task.BookID, err)
		}

		updated, err := enricher.EnrichBookCover(ctx, book)
		if err != nil {
			return fmt.Errorf("enrich cover for book %d: %w", task.BookID, err)
		}

		if updated {
			log.Printf("[TASK] Fetched cover for book %d (%s)", task.BookID, book.Title)
		} else {
			log.Printf("[TASK] No cover found for book %d (%s)", task.BookID, book.Title)
		}

		return nil
	}
}

// NewEnrichBookCoverQueue creates a backlite queue for cover enrichment.
func NewEnrichBookCoverQueue(enricher *metadata.Enricher, books BookGetter) backlite.Queue {
	return backlite.NewQueue(EnrichBookCoverProcessor(enricher, books))
}
