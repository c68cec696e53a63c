package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/sfn101/book-manager/internal/database/books"
	"github.com/sfn101/book-manager/internal/metadata"
	"github.com/sfn101/book-manager/internal/tasks"
)

// TaskEnqueuer enqueues background tasks. Nil disables async enrichment.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// BooksController handles the /api/books endpoints.
type BooksController struct {
	repo       *books.Repository
	olClient   *metadata.Client
	taskClient TaskEnqueuer
}

// NewBooksController creates a books controller. olClient and taskClient
// are optional; without them import and async enrichment are disabled.
func NewBooksController(repo *books.Repository, olClient *metadata.Client, taskClient TaskEnqueuer) *BooksController {
	return &BooksController{
		repo:       repo,
		olClient:   olClient,
		taskClient: taskClient,
	}
}

type bookPayload struct {
	Title           *string   `json:"title"`
	PublicationYear *int      `json:"publication_year"`
	OpenLibraryID   *string   `json:"open_library_id"`
	CoverID         *int64    `json:"cover_id"`
	Authors         *[]string `json:"authors"`
	Categories      *[]string `json:"categories"`
	Languages       *[]string `json:"languages"`
}

// List returns a filtered, paginated book listing.
// GET /api/books?search=&category=&language=&sort=&page=&per_page=
func (bc *BooksController) List(c *gin.Context) {
	filter := books.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Language: c.Query("language"),
	}

	sort := books.SortTitle
	switch c.Query("sort") {
	case "", "title":
	case "year":
		sort = books.SortYear
	case "id":
		sort = books.SortID
	default:
		respondBadRequest(c, "sort must be one of: title, year, id")
		return
	}

	page, perPage := parsePageParams(c)

	result, pageInfo, err := bc.repo.List(filter, sort, page, perPage)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{Data: result, Pagination: pageInfo})
}

// Get returns one book with its relations.
// GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "book", "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// Create adds a book together with its authors, categories and languages.
// POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	var req bookPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Title == nil || *req.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	fields := books.CreateFields{
		Title:   *req.Title,
		CoverID: req.CoverID,
	}
	if req.PublicationYear != nil {
		fields.PublicationYear = *req.PublicationYear
	}
	if req.OpenLibraryID != nil {
		fields.OpenLibraryID = *req.OpenLibraryID
	}
	if req.Authors != nil {
		fields.Authors = *req.Authors
	}
	if req.Categories != nil {
		fields.Categories = *req.Categories
	}
	if req.Languages != nil {
		fields.Languages = *req.Languages
	}

	book, err := bc.repo.Create(fields)
	if err != nil {
		respondStoreError(c, err, "book", "create book")
		return
	}

	bc.enqueueCoverFetch(book.ID, book.CoverID == nil)

	respondCreated(c, book)
}

type importRequest struct {
	OpenLibraryID string `json:"open_library_id" binding:"required"`
}

// Import fetches a work from OpenLibrary and creates it locally. The
// book is stored even when parts of the metadata are missing.
// POST /api/books/import
func (bc *BooksController) Import(c *gin.Context) {
	if bc.olClient == nil {
		respondBadRequest(c, "import is not configured")
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "open_library_id is required")
		return
	}

	meta, err := bc.olClient.GetByOpenLibraryID(c.Request.Context(), req.OpenLibraryID)
	if err != nil {
		respondBadRequest(c, "could not fetch book from OpenLibrary")
		return
	}
	if meta.Title == "" {
		respondBadRequest(c, "OpenLibrary entry has no title")
		return
	}

	fields := books.CreateFields{
		Title:           meta.Title,
		PublicationYear: meta.PublicationYear,
		OpenLibraryID:   meta.OpenLibraryID,
		Authors:         meta.Authors,
		Categories:      meta.Categories,
		Languages:       meta.Languages,
	}
	if meta.CoverID != 0 {
		coverID := meta.CoverID
		fields.CoverID = &coverID
	}

	book, err := bc.repo.Create(fields)
	if err != nil {
		respondStoreError(c, err, "book", "import book")
		return
	}

	bc.enqueueCoverFetch(book.ID, book.CoverID == nil)

	respondCreated(c, book)
}

// Update applies a partial update to a book.
// PUT /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Title != nil && *req.Title == "" {
		respondBadRequest(c, "title cannot be empty")
		return
	}

	book, err := bc.repo.Update(id, books.UpdateFields{
		Title:           req.Title,
		PublicationYear: req.PublicationYear,
		OpenLibraryID:   req.OpenLibraryID,
		CoverID:         req.CoverID,
		Authors:         req.Authors,
		Categories:      req.Categories,
		Languages:       req.Languages,
	})
	if err != nil {
		respondStoreError(c, err, "book", "update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes a book and its junction rows.
// DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.repo.Delete(id); err != nil {
		respondStoreError(c, err, "book", "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}

func (bc *BooksController) enqueueCoverFetch(bookID uint, missing bool) {
	if bc.taskClient == nil || !missing {
		return
	}
	_, _ = bc.taskClient.Add(tasks.EnrichBookCoverTask{BookID: bookID}).Save()
}
