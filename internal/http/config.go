package http

import (
	"github.com/sfn101/book-manager/internal/auth"
	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/database/authors"
	"github.com/sfn101/book-manager/internal/database/books"
	"github.com/sfn101/book-manager/internal/database/categories"
	"github.com/sfn101/book-manager/internal/database/collections"
	"github.com/sfn101/book-manager/internal/database/languages"
	"github.com/sfn101/book-manager/internal/database/users"
	"github.com/sfn101/book-manager/internal/metadata"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Catalog repositories
	Books       *books.Repository
	Authors     *authors.Repository
	Categories  *categories.Repository
	Languages   *languages.Repository
	Collections *collections.Repository
	Users       *users.Repository

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Metadata enrichment
	OpenLibrary *metadata.Client

	// Task queue client (optional)
	TaskClient TaskEnqueuer

	// Application info
	Version string
}
