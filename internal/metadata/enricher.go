package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/sfn101/book-manager/internal/entities"
)

// Provider defines the interface for fetching metadata.
type Provider interface {
	SearchByTitle(ctx context.Context, title string, limit int) ([]*BookMetadata, error)
	GetByOpenLibraryID(ctx context.Context, olid string) (*BookMetadata, error)
	SearchAuthor(ctx context.Context, name string) (*AuthorMetadata, error)
	AuthorPhotoURL(olid, size string) string
	VerifyCoverExists(ctx context.Context, coverID int64) bool
	VerifyAuthorPhotoExists(ctx context.Context, olid string) bool
}

// BookStore defines the book operations enrichment needs.
type BookStore interface {
	SetCover(id uint, coverID int64) error
	MissingCovers() ([]entities.Book, error)
}

// AuthorStore defines the author operations enrichment needs.
type AuthorStore interface {
	SetImageURL(id uint, imageURL string) error
	MissingImages() ([]entities.Author, error)
}

// BackfillResult summarises a bulk enrichment run.
type BackfillResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	NotFound  int `json:"not_found"`
	Errors    int `json:"errors"`
}

// Enricher fills in covers and author photos from OpenLibrary.
type Enricher struct {
	provider Provider
	books    BookStore
	authors  AuthorStore
}

// NewEnricher creates an Enricher over the given provider and stores.
func NewEnricher(provider Provider, books BookStore, authors AuthorStore) *Enricher {
	return &Enricher{
		provider: provider,
		books:    books,
		authors:  authors,
	}
}

// EnrichBookCover looks a book's cover up by title and stores the cover
// ID when one is found and verified. A lookup miss is reported, not an
// error: books without covers stay valid catalog entries.
func (e *Enricher) EnrichBookCover(ctx context.Context, book *entities.Book) (bool, error) {
	if book.CoverID != nil {
		return false, nil
	}

	results, err := e.provider.SearchByTitle(ctx, book.Title, 1)
	if err != nil {
		return false, fmt.Errorf("search for %q: %w", book.Title, err)
	}
	if len(results) == 0 || results[0].CoverID == 0 {
		return false, nil
	}

	coverID := results[0].CoverID
	if !e.provider.VerifyCoverExists(ctx, coverID) {
		return false, nil
	}

	if err := e.books.SetCover(book.ID, coverID); err != nil {
		return false, fmt.Errorf("store cover for %q: %w", book.Title, err)
	}
	return true, nil
}

// EnrichAuthorImage resolves an author's OLID and stores the full photo
// URL when one is available.
func (e *Enricher) EnrichAuthorImage(ctx context.Context, author *entities.Author) (bool, error) {
	if author.ImageURL != "" {
		return false, nil
	}

	match, err := e.provider.SearchAuthor(ctx, author.Name)
	if err != nil {
		return false, nil // no OpenLibrary match
	}
	if match.OLID == "" || !e.provider.VerifyAuthorPhotoExists(ctx, match.OLID) {
		return false, nil
	}

	photoURL := e.provider.AuthorPhotoURL(match.OLID, "L")
	if err := e.authors.SetImageURL(author.ID, photoURL); err != nil {
		return false, fmt.Errorf("store image for %q: %w", author.Name, err)
	}
	return true, nil
}

// BackfillCovers enriches every book that still has no cover.
func (e *Enricher) BackfillCovers(ctx context.Context) (*BackfillResult, error) {
	books, err := e.books.MissingCovers()
	if err != nil {
		return nil, fmt.Errorf("find books missing covers: %w", err)
	}

	result := &BackfillResult{}
	for i := range books {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.Processed++
		updated, err := e.EnrichBookCover(ctx, &books[i])
		switch {
		case err != nil:
			result.Errors++
			log.Printf("Cover enrichment failed for %q: %v", books[i].Title, err)
		case updated:
			result.Updated++
		default:
			result.NotFound++
		}
	}

	return result, nil
}

// BackfillAuthorImages enriches every author without a photo.
func (e *Enricher) BackfillAuthorImages(ctx context.Context) (*BackfillResult, error) {
	authors, err := e.authors.MissingImages()
	if err != nil {
		return nil, fmt.Errorf("find authors missing images: %w", err)
	}

	result := &BackfillResult{}
	for i := range authors {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.Processed++
		updated, err := e.EnrichAuthorImage(ctx, &authors[i])
		switch {
		case err != nil:
			result.Errors++
			log.Printf("Image enrichment failed for %q: %v", authors[i].Name, err)
		case updated:
			result.Updated++
		default:
			result.NotFound++
		}
	}

	return result, nil
}
