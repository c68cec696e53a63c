// Package users provides database operations for user accounts.
package users

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

// UpdateFields is a partial update; nil fields are left unchanged.
type UpdateFields struct {
	Username *string
	Email    *string
	Role     *entities.UserRole
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all users ordered by registration time.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at ASC, id ASC").Find(&users).Error
	return users, err
}

// GetByID retrieves a user by primary key.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByUsernameOrEmail looks a user up by either identifier. The
// match is case-insensitive.
func (r *Repository) GetByUsernameOrEmail(identifier string) (*entities.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	var user entities.User
	err := r.db.
		Where("LOWER(username) = ? OR LOWER(email) = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// Count returns the number of registered users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// Create stores a new user with an already-hashed password.
func (r *Repository) Create(username, email, passwordHash string, role entities.UserRole) (*entities.User, error) {
	user := entities.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// Update applies a partial update to a user.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	updates := map[string]any{}
	if fields.Username != nil {
		updates["username"] = strings.TrimSpace(*fields.Username)
	}
	if fields.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*fields.Email))
	}
	if fields.Role != nil {
		updates["role"] = *fields.Role
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := r.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// SetPasswordHash replaces a user's stored password hash.
func (r *Repository) SetPasswordHash(id uint, passwordHash string) error {
	result := r.db.Model(&entities.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a user together with their collections and the
// collection_books rows those collections held.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, id).Error; err != nil {
			return database.TranslateError(err)
		}
		err := tx.Exec(
			"DELETE FROM collection_books WHERE collection_id IN (SELECT id FROM collections WHERE user_id = ?)",
			id,
		).Error
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.Collection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.User{}, id).Error
	})
}
