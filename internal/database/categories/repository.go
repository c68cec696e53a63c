// Package categories provides database operations for category lookup
// entities.
package categories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

// Repository handles all category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// List returns all categories ordered by name.
func (r *Repository) List() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name COLLATE NOCASE ASC").Find(&categories).Error
	return categories, err
}

// GetByID retrieves a category.
func (r *Repository) GetByID(id uint) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &category, nil
}

// GetOrCreate retrieves a category by name, creating it if absent.
func (r *Repository) GetOrCreate(name string) (*entities.Category, error) {
	name = normalize(name)
	var category entities.Category
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = entities.Category{Name: name}
		err = r.db.Create(&category).Error
	}
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &category, nil
}

// Create adds a category, rejecting case-insensitive duplicates.
func (r *Repository) Create(name string) (*entities.Category, error) {
	name = normalize(name)

	var existing entities.Category
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := entities.Category{Name: name}
	if err := r.db.Create(&category).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &category, nil
}

// Rename changes a category's name, rejecting duplicates.
func (r *Repository) Rename(id uint, name string) (*entities.Category, error) {
	name = normalize(name)

	var category entities.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	var conflict entities.Category
	err := r.db.Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).First(&conflict).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.Model(&category).Update("name", name).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &category, nil
}

// Delete removes a category and its book links. Books stay untouched.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category entities.Category
		if err := tx.First(&category, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Exec("DELETE FROM book_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Category{}, id).Error
	})
}
