// Package languages provides database operations for language lookup
// entities.
package languages

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

// Repository handles all language database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new languages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// List returns all languages ordered by name.
func (r *Repository) List() ([]entities.Language, error) {
	var languages []entities.Language
	err := r.db.Order("name COLLATE NOCASE ASC").Find(&languages).Error
	return languages, err
}

// GetByID retrieves a language.
func (r *Repository) GetByID(id uint) (*entities.Language, error) {
	var language entities.Language
	if err := r.db.First(&language, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &language, nil
}

// GetOrCreate retrieves a language by name, creating it if absent.
func (r *Repository) GetOrCreate(name string) (*entities.Language, error) {
	name = normalize(name)
	var language entities.Language
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&language).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		language = entities.Language{Name: name}
		err = r.db.Create(&language).Error
	}
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &language, nil
}

// Create adds a language, rejecting case-insensitive duplicates.
func (r *Repository) Create(name string) (*entities.Language, error) {
	name = normalize(name)

	var existing entities.Language
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	language := entities.Language{Name: name}
	if err := r.db.Create(&language).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &language, nil
}

// Rename changes a language's name, rejecting duplicates.
func (r *Repository) Rename(id uint, name string) (*entities.Language, error) {
	name = normalize(name)

	var language entities.Language
	if err := r.db.First(&language, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	var conflict entities.Language
	err := r.db.Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).First(&conflict).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.Model(&language).Update("name", name).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &language, nil
}

// Delete removes a language and its book links. Books stay untouched.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var language entities.Language
		if err := tx.First(&language, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Exec("DELETE FROM book_languages WHERE language_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Language{}, id).Error
	})
}
