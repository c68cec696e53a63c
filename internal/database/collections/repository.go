// Package collections provides database operations for per-user book
// collections.
package collections

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

// UpdateFields is a partial update; nil fields are left unchanged.
type UpdateFields struct {
	Name        *string
	Description *string
}

// Repository handles all collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// List returns all collections.
func (r *Repository) List() ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.db.Order("id ASC").Find(&collections).Error
	return collections, err
}

// ListForUser returns the collections owned by a user.
func (r *Repository) ListForUser(userID uint) ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&collections).Error
	return collections, err
}

// GetByID retrieves a collection without its books.
func (r *Repository) GetByID(id uint) (*entities.Collection, error) {
	var collection entities.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &collection, nil
}

// Create adds a collection owned by the given user.
func (r *Repository) Create(userID uint, name, description string) (*entities.Collection, error) {
	collection := entities.Collection{
		UserID:      userID,
		Name:        normalize(name),
		Description: description,
	}
	if err := r.db.Create(&collection).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &collection, nil
}

// Update applies a partial update to name and description.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.Collection, error) {
	var collection entities.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	updates := map[string]any{}
	if fields.Name != nil {
		updates["name"] = normalize(*fields.Name)
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if len(updates) == 0 {
		return &collection, nil
	}

	if err := r.db.Model(&collection).Updates(updates).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &collection, nil
}

// Delete removes a collection and its collection_books rows. The books
// themselves are never deleted.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var collection entities.Collection
		if err := tx.First(&collection, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Exec("DELETE FROM collection_books WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Collection{}, id).Error
	})
}

// Books returns the books held by a collection, with relations preloaded.
func (r *Repository) Books(id uint) ([]entities.Book, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	var books []entities.Book
	err := r.db.
		Preload("Authors").
		Preload("Categories").
		Preload("Languages").
		Joins("JOIN collection_books cb ON cb.book_id = books.id").
		Where("cb.collection_id = ?", id).
		Order("books.title COLLATE NOCASE ASC").
		Find(&books).Error
	return books, err
}

// AddBook links a book into a collection. Adding a book twice is a
// conflict (composite primary key on the junction).
func (r *Repository) AddBook(collectionID, bookID uint) error {
	var collection entities.Collection
	if err := r.db.First(&collection, collectionID).Error; err != nil {
		return database.TranslateError(err)
	}
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		return database.TranslateError(err)
	}

	var count int64
	err := r.db.Table("collection_books").
		Where("collection_id = ? AND book_id = ?", collectionID, bookID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return database.ErrConflict
	}

	err = r.db.Model(&collection).Association("Books").Append(&book)
	return database.TranslateError(err)
}

// RemoveBook unlinks a book from a collection.
func (r *Repository) RemoveBook(collectionID, bookID uint) error {
	var collection entities.Collection
	if err := r.db.First(&collection, collectionID).Error; err != nil {
		return database.TranslateError(err)
	}

	result := r.db.Exec(
		"DELETE FROM collection_books WHERE collection_id = ? AND book_id = ?",
		collectionID, bookID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
