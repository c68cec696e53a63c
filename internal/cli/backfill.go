// Package cli holds the maintenance commands reachable from main.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfn101/book-manager/internal/config"
	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/database/authors"
	"github.com/sfn101/book-manager/internal/database/books"
	"github.com/sfn101/book-manager/internal/metadata"
)

// BackfillCommand runs the OpenLibrary enrichment sweep synchronously,
// without the task queue. Useful for one-off runs on a fresh import.
type BackfillCommand struct {
	DatabasePath string
	Covers       bool
	AuthorImages bool
}

func NewBackfillCommand() *BackfillCommand {
	return &BackfillCommand{}
}

func (cmd *BackfillCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Covers, "covers", true, "Fetch missing book covers")
	fs.BoolVar(&cmd.AuthorImages, "author-images", true, "Fetch missing author photos")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backfill [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch missing covers and author photos from OpenLibrary.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s backfill\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s backfill -db ./my-catalog.db -author-images=false\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !cmd.Covers && !cmd.AuthorImages {
		return fmt.Errorf("nothing to do: both -covers and -author-images are disabled")
	}

	return nil
}

func (cmd *BackfillCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	client := metadata.NewClient(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.CoversURL, cfg.OpenLibrary.Timeout)
	enricher := metadata.NewEnricher(client, books.NewRepository(db.DB), authors.NewRepository(db.DB))

	ctx := context.Background()

	if cmd.Covers {
		fmt.Println("Backfilling book covers...")
		result, err := enricher.BackfillCovers(ctx)
		if err != nil {
			return fmt.Errorf("cover backfill failed: %w", err)
		}
		fmt.Printf("Covers: %d processed, %d updated, %d not found, %d errors\n",
			result.Processed, result.Updated, result.NotFound, result.Errors)
	}

	if cmd.AuthorImages {
		fmt.Println("Backfilling author photos...")
		result, err := enricher.BackfillAuthorImages(ctx)
		if err != nil {
			return fmt.Errorf("author photo backfill failed: %w", err)
		}
		fmt.Printf("Author photos: %d processed, %d updated, %d not found, %d errors\n",
			result.Processed, result.Updated, result.NotFound, result.Errors)
	}

	return nil
}
