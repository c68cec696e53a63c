package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.AuthService != nil && cfg.SessionManager != nil {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.OpenLibrary, cfg.TaskClient)
	authorsController := NewAuthorsController(cfg.Authors, cfg.TaskClient)
	categoriesController := NewCategoriesController(cfg.Categories)
	languagesController := NewLanguagesController(cfg.Languages)
	collectionsController := NewCollectionsController(cfg.Collections)
	usersController := NewUsersController(cfg.Users)
	searchController := NewSearchController(cfg.Books, cfg.Authors)
	statisticsController := NewStatisticsController(cfg.Database)

	// Health endpoint
	router.GET("/health", health.Status)

	// Everything under /api requires a logged-in session.
	api := router.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Catalog reads
	api.GET("/books", booksController.List)
	api.GET("/books/:id", booksController.Get)
	api.GET("/authors", authorsController.List)
	api.GET("/authors/search", authorsController.Search)
	api.GET("/authors/:id", authorsController.Get)
	api.GET("/categories", categoriesController.List)
	api.GET("/categories/:id", categoriesController.Get)
	api.GET("/languages", languagesController.List)
	api.GET("/languages/:id", languagesController.Get)
	api.GET("/search", searchController.Search)
	api.GET("/statistics", statisticsController.Get)

	// Collections belong to the requesting user; ownership is checked
	// inside the controller.
	api.GET("/collections", collectionsController.List)
	api.POST("/collections", collectionsController.Create)
	api.GET("/collections/:id", collectionsController.Get)
	api.PUT("/collections/:id", collectionsController.Update)
	api.DELETE("/collections/:id", collectionsController.Delete)
	api.GET("/collections/:id/books", collectionsController.Books)
	api.POST("/collections/:id/books", collectionsController.AddBook)
	api.DELETE("/collections/:id/books/:bookID", collectionsController.RemoveBook)

	// Catalog mutations and user management are admin-only.
	admin := api.Group("")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}

	admin.POST("/books", booksController.Create)
	admin.POST("/books/import", booksController.Import)
	admin.PUT("/books/:id", booksController.Update)
	admin.DELETE("/books/:id", booksController.Delete)

	admin.POST("/authors", authorsController.Create)
	admin.PUT("/authors/:id", authorsController.Update)
	admin.POST("/authors/:id/image", authorsController.SetImage)
	admin.DELETE("/authors/:id", authorsController.Delete)

	admin.POST("/categories", categoriesController.Create)
	admin.PUT("/categories/:id", categoriesController.Update)
	admin.DELETE("/categories/:id", categoriesController.Delete)

	admin.POST("/languages", languagesController.Create)
	admin.PUT("/languages/:id", languagesController.Update)
	admin.DELETE("/languages/:id", languagesController.Delete)

	admin.GET("/users", usersController.List)
	admin.GET("/users/:id", usersController.Get)
	admin.PUT("/users/:id", usersController.Update)
	admin.DELETE("/users/:id", usersController.Delete)

	return router
}
