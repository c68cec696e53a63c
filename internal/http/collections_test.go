package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfn101/book-manager/internal/auth"
	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/database/books"
	"github.com/sfn101/book-manager/internal/database/collections"
	"github.com/sfn101/book-manager/internal/entities"
)

func setupCollectionsTestDB(t *testing.T) (*database.Database, *collections.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_collections_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := collections.NewRepository(db.DB)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, repo, cleanup
}

// actAs injects an authenticated user into the request context, standing
// in for the session middleware.
func actAs(userID uint, role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Set(auth.ContextKeyRole, role)
		c.Next()
	}
}

func newCollectionsRouter(controller *CollectionsController, userID uint, role entities.UserRole) *gin.Engine {
	router := gin.New()
	router.Use(actAs(userID, role))
	router.GET("/api/collections", controller.List)
	router.POST("/api/collections", controller.Create)
	router.GET("/api/collections/:id", controller.Get)
	router.PUT("/api/collections/:id", controller.Update)
	router.DELETE("/api/collections/:id", controller.Delete)
	router.GET("/api/collections/:id/books", controller.Books)
	router.POST("/api/collections/:id/books", controller.AddBook)
	router.DELETE("/api/collections/:id/books/:bookID", controller.RemoveBook)
	return router
}

func createTestUser(t *testing.T, db *database.Database, username string, role entities.UserRole) *entities.User {
	t.Helper()
	user := entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

func TestCollectionsController_Create(t *testing.T) {
	db, repo, cleanup := setupCollectionsTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "alice", entities.UserRoleUser)
	router := newCollectionsRouter(NewCollectionsController(repo), user.ID, user.Role)

	body := `{"name": "  To   Read ", "description": "someday"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/collections", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "To Read", created["name"])
	assert.Equal(t, float64(user.ID), created["user_id"])
}

func TestCollectionsController_List(t *testing.T) {
	t.Run("users see only their own collections", func(t *testing.T) {
		db, repo, cleanup := setupCollectionsTestDB(t)
		defer cleanup()

		alice := createTestUser(t, db, "alice", entities.UserRoleUser)
		bob := createTestUser(t, db, "bob", entities.UserRoleUser)

		_, err := repo.Create(alice.ID, "Alice Reads", "")
		require.NoError(t, err)
		_, err = repo.Create(bob.ID, "Bob Reads", "")
		require.NoError(t, err)

		router := newCollectionsRouter(NewCollectionsController(repo), alice.ID, alice.Role)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/collections", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Len(t, result, 1)
		assert.Equal(t, "Alice Reads", result[0]["name"])
	})

	t.Run("admins see every collection", func(t *testing.T) {
		db, repo, cleanup := setupCollectionsTestDB(t)
		defer cleanup()

		admin := createTestUser(t, db, "admin", entities.UserRoleAdmin)
		bob := createTestUser(t, db, "bob", entities.UserRoleUser)

		_, err := repo.Create(bob.ID, "Bob Reads", "")
		require.NoError(t, err)

		router := newCollectionsRouter(NewCollectionsController(repo), admin.ID, admin.Role)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/collections", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Len(t, result, 1)
	})
}

func TestCollectionsController_Ownership(t *testing.T) {
	t.Run("non-owner cannot read or modify", func(t *testing.T) {
		db, repo, cleanup := setupCollectionsTestDB(t)
		defer cleanup()

		alice := createTestUser(t, db, "alice", entities.UserRoleUser)
		bob := createTestUser(t, db, "bob", entities.UserRoleUser)

		collection, err := repo.Create(alice.ID, "Private", "")
		require.NoError(t, err)

		router := newCollectionsRouter(NewCollectionsController(repo), bob.ID, bob.Role)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/collections/1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("PUT", "/api/collections/1", strings.NewReader(`{"name": "Hijacked"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		// The row must be untouched after the rejected update.
		unchanged, err := repo.GetByID(collection.ID)
		require.NoError(t, err)
		assert.Equal(t, "Private", unchanged.Name)
	})

	t.Run("admin can modify any collection", func(t *testing.T) {
		db, repo, cleanup := setupCollectionsTestDB(t)
		defer cleanup()

		alice := createTestUser(t, db, "alice", entities.UserRoleUser)
		admin := createTestUser(t, db, "admin", entities.UserRoleAdmin)

		_, err := repo.Create(alice.ID, "Private", "")
		require.NoError(t, err)

		router := newCollectionsRouter(NewCollectionsController(repo), admin.ID, admin.Role)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/collections/1", strings.NewReader(`{"name": "Renamed"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Renamed")
	})
}

func TestCollectionsController_BookMembership(t *testing.T) {
	db, repo, cleanup := setupCollectionsTestDB(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice", entities.UserRoleUser)
	_, err := repo.Create(alice.ID, "Favourites", "")
	require.NoError(t, err)

	booksRepo := books.NewRepository(db.DB)
	book, err := booksRepo.Create(books.CreateFields{Title: "Dune"})
	require.NoError(t, err)

	router := newCollectionsRouter(NewCollectionsController(repo), alice.ID, alice.Role)

	// Add the book.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/collections/1/books", strings.NewReader(`{"book_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Adding it twice is a conflict.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/collections/1/books", strings.NewReader(`{"book_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The listing shows it.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/collections/1/books", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dune")

	// Remove it; the book itself survives.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/collections/1/books/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err = booksRepo.GetByID(book.ID)
	assert.NoError(t, err)

	// Removing again is a 404.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/collections/1/books/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
