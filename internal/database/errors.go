package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound signals a lookup of an id that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals a unique-constraint violation, e.g. a duplicate
	// username or category name.
	ErrConflict = errors.New("record already exists")
)

// TranslateError maps driver and ORM errors onto the package sentinels so
// callers never see raw database errors. Unknown errors pass through.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrConflict
		}
	}
	return err
}
