// Package authors provides database operations for author management.
package authors

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
)

// Summary is the listing shape for authors: the author plus the books
// attributed to them.
type Summary struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	ImageURL   string   `json:"image_url,omitempty"`
	BookCount  int      `json:"book_count"`
	BookTitles []string `json:"book_titles"`
}

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func summarize(author entities.Author) Summary {
	titles := make([]string, 0, len(author.Books))
	for _, book := range author.Books {
		titles = append(titles, book.Title)
	}
	return Summary{
		ID:         author.ID,
		Name:       author.Name,
		ImageURL:   author.ImageURL,
		BookCount:  len(author.Books),
		BookTitles: titles,
	}
}

// List returns all authors with their book counts, most-published first.
func (r *Repository) List() ([]Summary, error) {
	var authors []entities.Author
	err := r.db.Preload("Books").Find(&authors).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(authors))
	for _, author := range authors {
		summaries = append(summaries, summarize(author))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].BookCount != summaries[j].BookCount {
			return summaries[i].BookCount > summaries[j].BookCount
		}
		return strings.ToLower(summaries[i].Name) < strings.ToLower(summaries[j].Name)
	})
	return summaries, nil
}

// GetByID retrieves one author with book titles.
func (r *Repository) GetByID(id uint) (*Summary, error) {
	var author entities.Author
	err := r.db.Preload("Books").First(&author, id).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	summary := summarize(author)
	return &summary, nil
}

// Search finds authors whose name contains the query, case-insensitively.
func (r *Repository) Search(name string) ([]Summary, error) {
	like := "%" + strings.ToLower(normalize(name)) + "%"
	var authors []entities.Author
	err := r.db.Preload("Books").Where("LOWER(name) LIKE ?", like).Find(&authors).Error
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(authors))
	for _, author := range authors {
		summaries = append(summaries, summarize(author))
	}
	return summaries, nil
}

// Create adds an author, rejecting case-insensitive duplicates.
func (r *Repository) Create(name string) (*entities.Author, error) {
	name = normalize(name)

	var existing entities.Author
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	author := entities.Author{Name: name}
	if err := r.db.Create(&author).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &author, nil
}

// Rename changes an author's name, rejecting a name already held by a
// different author.
func (r *Repository) Rename(id uint, name string) (*entities.Author, error) {
	name = normalize(name)

	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	var conflict entities.Author
	err := r.db.Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).First(&conflict).Error
	if err == nil {
		return nil, database.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.Model(&author).Update("name", name).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &author, nil
}

// SetImageURL stores the author's photo URL.
func (r *Repository) SetImageURL(id uint, imageURL string) error {
	result := r.db.Model(&entities.Author{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes an author and its book links. Books stay untouched.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Exec("DELETE FROM book_authors WHERE author_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Author{}, id).Error
	})
}

// MissingImages returns authors without a photo URL, used by the
// background enrichment backfill.
func (r *Repository) MissingImages() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Where("image_url = '' OR image_url IS NULL").Find(&authors).Error
	return authors, err
}
