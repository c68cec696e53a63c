package authors

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
	dbPath := "./test_authors_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Category{},
		&entities.Language{},
		&entities.Book{},
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

func addBook(t *testing.T, db *gorm.DB, title string, author *entities.Author) {
	t.Helper()
	book := entities.Book{Title: title}
	require.NoError(t, db.Create(&book).Error)
	require.NoError(t, db.Model(&book).Association("Authors").Append(author))
}

func TestRepository_Create(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	author, err := repo.Create("  Ursula   K. Le Guin ")

	require.NoError(t, err)
	assert.NotZero(t, author.ID)
	assert.Equal(t, "Ursula K. Le Guin", author.Name)
}

func TestRepository_Create_DuplicateName(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("Frank Herbert")
	require.NoError(t, err)

	_, err = repo.Create("frank herbert")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_List_SortedByBookCount(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	prolific, err := repo.Create("Prolific Author")
	require.NoError(t, err)
	quiet, err := repo.Create("Quiet Author")
	require.NoError(t, err)

	addBook(t, db, "Book One", prolific)
	addBook(t, db, "Book Two", prolific)
	addBook(t, db, "Book Three", quiet)

	summaries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Prolific Author", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].BookCount)
	assert.Equal(t, []string{"Book One", "Book Two"}, summaries[0].BookTitles)
}

func TestRepository_Search(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("Isaac Asimov")
	require.NoError(t, err)
	_, err = repo.Create("Frank Herbert")
	require.NoError(t, err)

	results, err := repo.Search("asi")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Isaac Asimov", results[0].Name)
}

func TestRepository_Rename_Conflict(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("Isaac Asimov")
	require.NoError(t, err)
	author, err := repo.Create("Frank Herbert")
	require.NoError(t, err)

	_, err = repo.Rename(author.ID, "Isaac Asimov")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_SetImageURL(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	author, err := repo.Create("Frank Herbert")
	require.NoError(t, err)

	url := "https://covers.openlibrary.org/a/olid/OL79034A-L.jpg"
	require.NoError(t, repo.SetImageURL(author.ID, url))

	got, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.ImageURL)
}

func TestRepository_SetImageURL_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetImageURL(999, "https://example.com/a.jpg")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete_ClearsBookLinks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, err := repo.Create("To Delete")
	require.NoError(t, err)
	addBook(t, db, "Surviving Book", author)

	require.NoError(t, repo.Delete(author.ID))

	var linkCount int64
	require.NoError(t, db.Table("book_authors").Where("author_id = ?", author.ID).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	var bookCount int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&bookCount).Error)
	assert.Equal(t, int64(1), bookCount)
}

func TestRepository_MissingImages(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	withImage, err := repo.Create("Pictured Author")
	require.NoError(t, err)
	require.NoError(t, repo.SetImageURL(withImage.ID, "https://example.com/a.jpg"))
	_, err = repo.Create("Faceless Author")
	require.NoError(t, err)

	missing, err := repo.MissingImages()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "Faceless Author", missing[0].Name)
}
