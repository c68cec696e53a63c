package users

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
	dbPath := "./test_users_" + t.Name() + ".db"

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

func TestRepository_Create(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("alice", " Alice@Example.COM ", "hash", entities.UserRoleUser)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entities.UserRoleUser, user.Role)
}

func TestRepository_Create_DuplicateUsername(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("alice", "alice@example.com", "hash", entities.UserRoleUser)
	require.NoError(t, err)

	_, err = repo.Create("alice", "other@example.com", "hash", entities.UserRoleUser)
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRepository_GetByUsernameOrEmail(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.Create("alice", "alice@example.com", "hash", entities.UserRoleUser)
	require.NoError(t, err)

	byName, err := repo.GetByUsernameOrEmail("ALICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.GetByUsernameOrEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByUsernameOrEmail("nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Count(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Create("alice", "alice@example.com", "hash", entities.UserRoleAdmin)
	require.NoError(t, err)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Update_Role(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("alice", "alice@example.com", "hash", entities.UserRoleUser)
	require.NoError(t, err)

	role := entities.UserRoleAdmin
	updated, err := repo.Update(user.ID, UpdateFields{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, updated.Role)
	assert.Equal(t, "alice", updated.Username)
}

func TestRepository_SetPasswordHash_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetPasswordHash(999, "newhash")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete_CascadesCollections(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("alice", "alice@example.com", "hash", entities.UserRoleUser)
	require.NoError(t, err)

	book := entities.Book{Title: "Dune"}
	require.NoError(t, db.Create(&book).Error)
	collection := entities.Collection{UserID: user.ID, Name: "Favourites"}
	require.NoError(t, db.Create(&collection).Error)
	require.NoError(t, db.Model(&collection).Association("Books").Append(&book))

	require.NoError(t, repo.Delete(user.ID))

	_, err = repo.GetByID(user.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var collectionCount int64
	require.NoError(t, db.Model(&entities.Collection{}).Count(&collectionCount).Error)
	assert.Zero(t, collectionCount)

	var linkCount int64
	require.NoError(t, db.Table("collection_books").Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	// Books themselves are untouched
	var bookCount int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&bookCount).Error)
	assert.Equal(t, int64(1), bookCount)
}
