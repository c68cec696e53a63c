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

// AuthorGetter loads an author for a queued task.
type AuthorGetter interface {
	GetByID(id uint) (*entities.Author, error)
}

// EnrichAuthorImageTask fetches a photo for a single author.
type EnrichAuthorImageTask struct {
	AuthorID uint `json:"author_id"`
}

// Config returns the queue configuration for author image tasks.
func (t EnrichAuthorImageTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_author_image",
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

// EnrichAuthorImageProcessor creates a processor function for author image tasks.
func EnrichAuthorImageProcessor(enricher *metadata.Enricher, authors AuthorGetter) backlite.QueueProcessor[EnrichAuthorImageTask] {
	return func(ctx context.Context, task EnrichAuthorImageTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		author, err := authors.GetByID(task.AuthorID)
		if err != nil {
			return fmt.Errorf("get author %d: %w", task.AuthorID, err)
		}

		updated, err := enricher.EnrichAuthorImage(ctx, author)
		if err != nil {
			return fmt.Errorf("enrich image for author %d: %w", task.AuthorID, err)
		}

		if updated {
			log.Printf("[TASK] Fetched photo for author %d (%s)", task.AuthorID, author.Name)
		} else {
			log.Printf("[TASK] No photo found for author %d (%s)", task.AuthorID, author.Name)
		}

		return nil
	}
}

// NewEnrichAuthorImageQueue creates a backlite queue for author image enrichment.
func NewEnrichAuthorImageQueue(enricher *metadata.Enricher, authors AuthorGetter) backlite.Queue {
	return backlite.NewQueue(EnrichAuthorImageProcessor(enricher, authors))
}
