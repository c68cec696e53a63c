package database

import "github.com/sfn101/book-manager/internal/entities"

// Statistics summarises catalog contents for the dashboard endpoint.
type Statistics struct {
	Books           int64 `json:"books"`
	Authors         int64 `json:"authors"`
	Categories      int64 `json:"categories"`
	Languages       int64 `json:"languages"`
	Users           int64 `json:"users"`
	Collections     int64 `json:"collections"`
	BooksWithCovers int64 `json:"books_with_covers"`
	MissingCovers   int64 `json:"missing_covers"`
}

// Statistics counts every major entity in one pass.
func (d *Database) Statistics() (*Statistics, error) {
	stats := &Statistics{}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&entities.Book{}, &stats.Books},
		{&entities.Author{}, &stats.Authors},
		{&entities.Category{}, &stats.Categories},
		{&entities.Language{}, &stats.Languages},
		{&entities.User{}, &stats.Users},
		{&entities.Collection{}, &stats.Collections},
	}
	for _, c := range counts {
		if err := d.DB.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	err := d.DB.Model(&entities.Book{}).
		Where("cover_id IS NOT NULL").
		Count(&stats.BooksWithCovers).Error
	if err != nil {
		return nil, err
	}
	stats.MissingCovers = stats.Books - stats.BooksWithCovers

	return stats, nil
}
