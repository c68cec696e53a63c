package collections

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_collections_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Category{},
		&entities.Language{},
		&entities.Book{},
		&entities.Collection{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         entities.UserRoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createBook(t *testing.T, db *gorm.DB, title string) *entities.Book {
	t.Helper()
	book := entities.Book{Title: title}
	require.NoError(t, db.Create(&book).Error)
	return &book
}

func TestRepository_Create(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")

	collection, err := repo.Create(user.ID, "  To   Read ", "books on the shelf")

	require.NoError(t, err)
	assert.NotZero(t, collection.ID)
	assert.Equal(t, "To Read", collection.Name)
	assert.Equal(t, user.ID, collection.UserID)
}

func TestRepository_ListForUser(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := repo.Create(alice.ID, "Alice's Shelf", "")
	require.NoError(t, err)
	_, err = repo.Create(bob.ID, "Bob's Shelf", "")
	require.NoError(t, err)

	collections, err := repo.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "Alice's Shelf", collections[0].Name)
}

func TestRepository_Update_Partial(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Old Name", "old description")
	require.NoError(t, err)

	name := "New Name"
	updated, err := repo.Update(collection.ID, UpdateFields{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old description", updated.Description)
}

func TestRepository_AddBook_And_Books(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Favourites", "")
	require.NoError(t, err)
	book := createBook(t, db, "Dune")

	require.NoError(t, repo.AddBook(collection.ID, book.ID))

	books, err := repo.Books(collection.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestRepository_AddBook_Duplicate(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Favourites", "")
	require.NoError(t, err)
	book := createBook(t, db, "Dune")

	require.NoError(t, repo.AddBook(collection.ID, book.ID))
	err = repo.AddBook(collection.ID, book.ID)
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_AddBook_MissingBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Favourites", "")
	require.NoError(t, err)

	err = repo.AddBook(collection.ID, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_RemoveBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Favourites", "")
	require.NoError(t, err)
	book := createBook(t, db, "Dune")
	require.NoError(t, repo.AddBook(collection.ID, book.ID))

	require.NoError(t, repo.RemoveBook(collection.ID, book.ID))

	books, err := repo.Books(collection.ID)
	require.NoError(t, err)
	assert.Empty(t, books)

	// Removing again reports not found
	err = repo.RemoveBook(collection.ID, book.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete_KeepsBooks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db, "reader")
	collection, err := repo.Create(user.ID, "Favourites", "")
	require.NoError(t, err)
	book := createBook(t, db, "Dune")
	require.NoError(t, repo.AddBook(collection.ID, book.ID))

	require.NoError(t, repo.Delete(collection.ID))

	_, err = repo.GetByID(collection.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var linkCount int64
	require.NoError(t, db.Table("collection_books").Where("collection_id = ?", collection.ID).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	var bookCount int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&bookCount).Error)
	assert.Equal(t, int64(1), bookCount)
}
