package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database/authors"
	"github.com/sfn101/book-manager/internal/database/books"
)

// SearchController handles the cross-entity /api/search endpoint.
type SearchController struct {
	books   *books.Repository
	authors *authors.Repository
}

// NewSearchController creates a search controller.
func NewSearchController(booksRepo *books.Repository, authorsRepo *authors.Repository) *SearchController {
	return &SearchController{books: booksRepo, authors: authorsRepo}
}

// Search performs a combined case-insensitive lookup across book titles,
// author names, and category names.
// GET /api/search?q=
func (sc *SearchController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "query parameter 'q' is required")
		return
	}

	page, perPage := parsePageParams(c)
	bookMatches, pageInfo, err := sc.books.List(books.Filter{Search: query}, books.SortTitle, page, perPage)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	authorMatches, err := sc.authors.Search(query)
	if err != nil {
		respondInternalError(c, err, "search authors")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"books":   PaginatedResponse{Data: bookMatches, Pagination: pageInfo},
		"authors": authorMatches,
	})
}
