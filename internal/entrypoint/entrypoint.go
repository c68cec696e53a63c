// Package entrypoint wires configuration, storage, background workers
// and the HTTP router into a running server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/auth"
	"github.com/sfn101/book-manager/internal/config"
	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/database/authors"
	"github.com/sfn101/book-manager/internal/database/books"
	"github.com/sfn101/book-manager/internal/database/categories"
	"github.com/sfn101/book-manager/internal/database/collections"
	"github.com/sfn101/book-manager/internal/database/languages"
	"github.com/sfn101/book-manager/internal/database/users"
	http_controllers "github.com/sfn101/book-manager/internal/http"
	"github.com/sfn101/book-manager/internal/metadata"
	"github.com/sfn101/book-manager/internal/scheduler"
	"github.com/sfn101/book-manager/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it
// within the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the whole application from config and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Manager v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	authorsRepo := authors.NewRepository(db.DB)
	categoriesRepo := categories.NewRepository(db.DB)
	languagesRepo := languages.NewRepository(db.DB)
	collectionsRepo := collections.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	// OpenLibrary client and the enricher that writes covers and author
	// photos back into the catalog.
	openLibraryClient := metadata.NewClient(
		cfg.OpenLibrary.BaseURL,
		cfg.OpenLibrary.CoversURL,
		cfg.OpenLibrary.Timeout,
	)
	enricher := metadata.NewEnricher(openLibraryClient, booksRepo, authorsRepo)

	// Task queue for asynchronous enrichment work.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookCoverQueue(enricher, booksRepo),
			tasks.NewEnrichAuthorImageQueue(enricher, authorsRepo),
			tasks.NewBackfillEnrichmentQueue(enricher),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Nightly backfill sweep, only useful with the queue running.
	var enrichmentScheduler *scheduler.EnrichmentSyncScheduler
	if taskClient != nil {
		enrichmentScheduler = scheduler.NewEnrichmentSyncScheduler(taskClient, scheduler.Config{
			Enabled:  cfg.EnrichmentSync.Enabled,
			Schedule: cfg.EnrichmentSync.Schedule,
		})
		if err := enrichmentScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: enrichment sync scheduler failed to start: %v", err)
		}
	}

	// Authentication: service, session store and CSRF secret.
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. The first account to sign up becomes the administrator.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Books:          booksRepo,
		Authors:        authorsRepo,
		Categories:     categoriesRepo,
		Languages:      languagesRepo,
		Collections:    collectionsRepo,
		Users:          usersRepo,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		OpenLibrary:    openLibraryClient,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if enrichmentScheduler != nil {
			enrichmentScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
