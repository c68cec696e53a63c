// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, meta, err := repo.List(books.Filter{Search: "tolkien"}, books.SortTitle, 1, 20)
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/entities"
	"github.com/sfn101/book-manager/internal/pagination"
)

// SortKey selects the ordering of book listings.
type SortKey string

const (
	SortTitle SortKey = "title"
	SortYear  SortKey = "year"
	SortID    SortKey = "id"
)

// Filter narrows book listings. All matches are case-insensitive.
type Filter struct {
	// Search matches against book title, author name, or category name.
	Search string
	// Category restricts results to books tagged with this category name.
	Category string
	// Language restricts results to books in this language.
	Language string
}

// CreateFields is the payload for creating a book with its relations.
type CreateFields struct {
	Title           string
	PublicationYear int
	OpenLibraryID   string
	CoverID         *int64
	Authors         []string
	Categories      []string
	Languages       []string
}

// UpdateFields is a partial update; nil fields are left unchanged.
// Slices, when present, replace the existing relations.
type UpdateFields struct {
	Title           *string
	PublicationYear *int
	OpenLibraryID   *string
	CoverID         *int64
	Authors         *[]string
	Categories      *[]string
	Languages       *[]string
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// normalize collapses runs of whitespace and trims the ends.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orderExpr(sort SortKey) string {
	switch sort {
	case SortYear:
		return "books.publication_year ASC, books.id ASC"
	case SortID:
		return "books.id ASC"
	default:
		return "books.title COLLATE NOCASE ASC, books.id ASC"
	}
}

// filtered builds the joined, filtered query used by both List and its
// count. The joins can multiply rows, so callers must de-duplicate by
// book id.
func (r *Repository) filtered(tx *gorm.DB, filter Filter) *gorm.DB {
	q := tx.Model(&entities.Book{}).
		Joins("LEFT JOIN book_authors ba ON ba.book_id = books.id").
		Joins("LEFT JOIN authors a ON a.id = ba.author_id").
		Joins("LEFT JOIN book_categories bc ON bc.book_id = books.id").
		Joins("LEFT JOIN categories c ON c.id = bc.category_id").
		Joins("LEFT JOIN book_languages bl ON bl.book_id = books.id").
		Joins("LEFT JOIN languages l ON l.id = bl.language_id")

	if search := normalize(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(books.title) LIKE ? OR LOWER(a.name) LIKE ? OR LOWER(c.name) LIKE ?",
			like, like, like,
		)
	}
	if filter.Category != "" {
		q = q.Where("LOWER(c.name) = LOWER(?)", normalize(filter.Category))
	}
	if filter.Language != "" {
		q = q.Where("LOWER(l.name) = LOWER(?)", normalize(filter.Language))
	}
	return q
}

// List returns one page of books matching the filter, with authors,
// categories and languages preloaded, plus the pagination metadata.
func (r *Repository) List(filter Filter, sort SortKey, page, perPage int) ([]entities.Book, pagination.Page, error) {
	page, perPage = pagination.Clamp(page, perPage)

	var total int64
	err := r.filtered(r.db, filter).Distinct("books.id").Count(&total).Error
	if err != nil {
		return nil, pagination.Page{}, err
	}

	meta := pagination.New(page, perPage, total)

	var ids []uint
	err = r.filtered(r.db, filter).
		Group("books.id").
		Order(orderExpr(sort)).
		Limit(perPage).
		Offset(meta.Offset()).
		Pluck("books.id", &ids).Error
	if err != nil {
		return nil, pagination.Page{}, err
	}

	if len(ids) == 0 {
		return []entities.Book{}, meta, nil
	}

	var books []entities.Book
	err = r.db.
		Preload("Authors").
		Preload("Categories").
		Preload("Languages").
		Where("books.id IN ?", ids).
		Order(orderExpr(sort)).
		Find(&books).Error
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return books, meta, nil
}

// GetByID retrieves a book with its relations preloaded.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Authors").
		Preload("Categories").
		Preload("Languages").
		First(&book, id).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &book, nil
}

// GetByTitle retrieves a book by exact title, case-insensitively.
func (r *Repository) GetByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Authors").
		Preload("Categories").
		Preload("Languages").
		Where("LOWER(title) = LOWER(?)", normalize(title)).
		First(&book).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &book, nil
}

// Create inserts a book and links its authors, categories and languages,
// creating any that do not exist yet. The whole operation runs in one
// transaction: either the book and all its relation rows commit, or none do.
func (r *Repository) Create(fields CreateFields) (*entities.Book, error) {
	title := normalize(fields.Title)

	var created entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Where("LOWER(title) = LOWER(?)", title).First(&existing).Error
		if err == nil {
			return database.ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		book := entities.Book{
			Title:           title,
			PublicationYear: fields.PublicationYear,
			OpenLibraryID:   fields.OpenLibraryID,
			CoverID:         fields.CoverID,
		}
		if err := tx.Create(&book).Error; err != nil {
			return database.TranslateError(err)
		}

		if err := linkRelations(tx, &book, fields.Authors, fields.Categories, fields.Languages); err != nil {
			return err
		}
		created = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(created.ID)
}

// Update applies a partial update, replacing relation sets when provided.
// Runs in one transaction.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.Book, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return database.TranslateError(err)
		}

		updates := map[string]any{}
		if fields.Title != nil {
			title := normalize(*fields.Title)
			var conflict entities.Book
			err := tx.Where("LOWER(title) = LOWER(?) AND id <> ?", title, id).First(&conflict).Error
			if err == nil {
				return database.ErrConflict
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			updates["title"] = title
		}
		if fields.PublicationYear != nil {
			updates["publication_year"] = *fields.PublicationYear
		}
		if fields.OpenLibraryID != nil {
			updates["open_library_id"] = *fields.OpenLibraryID
		}
		if fields.CoverID != nil {
			updates["cover_id"] = *fields.CoverID
		}
		if len(updates) > 0 {
			if err := tx.Model(&book).Updates(updates).Error; err != nil {
				return database.TranslateError(err)
			}
		}

		if fields.Authors != nil {
			if err := replaceAuthors(tx, &book, *fields.Authors); err != nil {
				return err
			}
		}
		if fields.Categories != nil {
			if err := replaceCategories(tx, &book, *fields.Categories); err != nil {
				return err
			}
		}
		if fields.Languages != nil {
			if err := replaceLanguages(tx, &book, *fields.Languages); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a book and its junction rows. Authors, categories and
// languages themselves are left intact.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return database.TranslateError(err)
		}

		for _, stmt := range []string{
			"DELETE FROM book_authors WHERE book_id = ?",
			"DELETE FROM book_categories WHERE book_id = ?",
			"DELETE FROM book_languages WHERE book_id = ?",
			"DELETE FROM collection_books WHERE book_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}

// SetCover stores the cover identifier for a book.
func (r *Repository) SetCover(id uint, coverID int64) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("cover_id", coverID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MissingCovers returns books without a cover identifier, used by the
// background enrichment backfill.
func (r *Repository) MissingCovers() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Where("cover_id IS NULL").Find(&books).Error
	return books, err
}

func linkRelations(tx *gorm.DB, book *entities.Book, authors, categories, languages []string) error {
	for _, name := range authors {
		author, err := upsertAuthor(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(book).Association("Authors").Append(author); err != nil {
			return err
		}
	}
	for _, name := range categories {
		category, err := upsertCategory(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(book).Association("Categories").Append(category); err != nil {
			return err
		}
	}
	for _, name := range languages {
		language, err := upsertLanguage(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(book).Association("Languages").Append(language); err != nil {
			return err
		}
	}
	return nil
}

func replaceAuthors(tx *gorm.DB, book *entities.Book, names []string) error {
	linked := make([]*entities.Author, 0, len(names))
	for _, name := range names {
		author, err := upsertAuthor(tx, name)
		if err != nil {
			return err
		}
		linked = append(linked, author)
	}
	return tx.Model(book).Association("Authors").Replace(linked)
}

func replaceCategories(tx *gorm.DB, book *entities.Book, names []string) error {
	linked := make([]*entities.Category, 0, len(names))
	for _, name := range names {
		category, err := upsertCategory(tx, name)
		if err != nil {
			return err
		}
		linked = append(linked, category)
	}
	return tx.Model(book).Association("Categories").Replace(linked)
}

func replaceLanguages(tx *gorm.DB, book *entities.Book, names []string) error {
	linked := make([]*entities.Language, 0, len(names))
	for _, name := range names {
		language, err := upsertLanguage(tx, name)
		if err != nil {
			return err
		}
		linked = append(linked, language)
	}
	return tx.Model(book).Association("Languages").Replace(linked)
}

func upsertAuthor(tx *gorm.DB, name string) (*entities.Author, error) {
	name = normalize(name)
	var author entities.Author
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		author = entities.Author{Name: name}
		err = tx.Create(&author).Error
	}
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &author, nil
}

func upsertCategory(tx *gorm.DB, name string) (*entities.Category, error) {
	name = normalize(name)
	var category entities.Category
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = entities.Category{Name: name}
		err = tx.Create(&category).Error
	}
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &category, nil
}

func upsertLanguage(tx *gorm.DB, name string) (*entities.Language, error) {
	name = normalize(name)
	var language entities.Language
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&language).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		language = entities.Language{Name: name}
		err = tx.Create(&language).Error
	}
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &language, nil
}
