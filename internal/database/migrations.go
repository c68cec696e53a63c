package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/entities"
)

// authorImageURLPattern resolves a legacy OpenLibrary author OLID into a
// displayable photo URL.
const authorImageURLPattern = "https://covers.openlibrary.org/a/olid/%s-L.jpg"

// MigrateAuthorImageURLs rewrites author image identifiers stored as bare
// OLIDs into full URLs. Rows already holding a URL are left untouched, so
// re-running the migration is a no-op.
func (d *Database) MigrateAuthorImageURLs() error {
	var authors []entities.Author
	err := d.DB.
		Where("image_url <> '' AND image_url NOT LIKE 'http%'").
		Find(&authors).Error
	if err != nil {
		return err
	}

	for _, author := range authors {
		url := fmt.Sprintf(authorImageURLPattern, strings.TrimSpace(author.ImageURL))
		if err := d.DB.Model(&entities.Author{}).
			Where("id = ?", author.ID).
			Update("image_url", url).Error; err != nil {
			return err
		}
	}

	if len(authors) > 0 {
		log.Printf("Migrated %d author image identifiers to full URLs", len(authors))
	}
	return nil
}

// SeedAdminRole backfills missing roles to 'user' and promotes the
// earliest-created user to admin, but only when no admin exists yet.
// Re-running never promotes a second admin. Rows predating the role
// column carry NULL, which the role CHECK constraint does not reject.
func (d *Database) SeedAdminRole() error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.User{}).
			Where("role IS NULL").
			Update("role", entities.UserRoleUser).Error
		if err != nil {
			return err
		}

		var admins int64
		err = tx.Model(&entities.User{}).
			Where("role = ?", entities.UserRoleAdmin).
			Count(&admins).Error
		if err != nil {
			return err
		}
		if admins > 0 {
			return nil
		}

		var first entities.User
		err = tx.Order("created_at ASC, id ASC").First(&first).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		log.Printf("Promoting earliest user %q to admin", first.Username)
		return tx.Model(&first).Update("role", entities.UserRoleAdmin).Error
	})
}
