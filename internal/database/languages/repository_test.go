package languages

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
	dbPath := "./test_languages_" + t.Name() + ".db"

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

func TestRepository_Create(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	language, err := repo.Create(" English ")
	require.NoError(t, err)
	assert.Equal(t, "English", language.Name)

	_, err = repo.Create("english")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_GetOrCreate(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.GetOrCreate("French")
	require.NoError(t, err)

	second, err := repo.GetOrCreate("FRENCH")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	languages, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, languages, 1)
}

func TestRepository_List_Sorted(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	for _, name := range []string{"spanish", "English", "german"} {
		_, err := repo.Create(name)
		require.NoError(t, err)
	}

	languages, err := repo.List()
	require.NoError(t, err)
	require.Len(t, languages, 3)
	assert.Equal(t, "English", languages[0].Name)
	assert.Equal(t, "german", languages[1].Name)
	assert.Equal(t, "spanish", languages[2].Name)
}

func TestRepository_Rename(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("English")
	require.NoError(t, err)
	language, err := repo.Create("Hindee")
	require.NoError(t, err)

	renamed, err := repo.Rename(language.ID, "Hindi")
	require.NoError(t, err)
	assert.Equal(t, "Hindi", renamed.Name)

	_, err = repo.Rename(language.ID, "ENGLISH")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_Delete_ClearsBookLinks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	language, err := repo.Create("Latin")
	require.NoError(t, err)

	book := entities.Book{Title: "Commentarii de Bello Gallico"}
	require.NoError(t, db.Create(&book).Error)
	require.NoError(t, db.Model(&book).Association("Languages").Append(language))

	require.NoError(t, repo.Delete(language.ID))

	_, err = repo.GetByID(language.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var linkCount int64
	require.NoError(t, db.Table("book_languages").Where("language_id = ?", language.ID).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	var bookCount int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&bookCount).Error)
	assert.Equal(t, int64(1), bookCount)
}
