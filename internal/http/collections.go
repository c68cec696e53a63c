package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/auth"
	"github.com/sfn101/book-manager/internal/database/collections"
	"github.com/sfn101/book-manager/internal/entities"
)

// CollectionsController handles the /api/collections endpoints. Every
// collection belongs to a user; mutations and single-collection reads are
// restricted to the owner, with admins allowed everywhere.
type CollectionsController struct {
	repo *collections.Repository
}

// NewCollectionsController creates a collections controller.
func NewCollectionsController(repo *collections.Repository) *CollectionsController {
	return &CollectionsController{repo: repo}
}

// authorize loads a collection and checks that the current user may touch
// it. On failure the response has already been written.
func (cc *CollectionsController) authorize(c *gin.Context, id uint) (*entities.Collection, bool) {
	collection, err := cc.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "collection", "get collection")
		return nil, false
	}
	if collection.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		respondForbidden(c)
		return nil, false
	}
	return collection, true
}

// List returns the current user's collections. Admins see every
// collection.
// GET /api/collections
func (cc *CollectionsController) List(c *gin.Context) {
	var (
		result []entities.Collection
		err    error
	)
	if auth.IsAdmin(c) {
		result, err = cc.repo.List()
	} else {
		result, err = cc.repo.ListForUser(auth.GetUserID(c))
	}
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one collection.
// GET /api/collections/:id
func (cc *CollectionsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	collection, ok := cc.authorize(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, collection)
}

// Create adds a collection owned by the current user.
// POST /api/collections
func (cc *CollectionsController) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	collection, err := cc.repo.Create(auth.GetUserID(c), req.Name, req.Description)
	if err != nil {
		respondStoreError(c, err, "collection", "create collection")
		return
	}

	respondCreated(c, collection)
}

// Update renames a collection or changes its description.
// PUT /api/collections/:id
func (cc *CollectionsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		respondBadRequest(c, "name cannot be empty")
		return
	}

	if _, ok := cc.authorize(c, id); !ok {
		return
	}

	collection, err := cc.repo.Update(id, collections.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondStoreError(c, err, "collection", "update collection")
		return
	}

	c.JSON(http.StatusOK, collection)
}

// Delete removes a collection. The books it held are untouched.
// DELETE /api/collections/:id
func (cc *CollectionsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := cc.authorize(c, id); !ok {
		return
	}

	if err := cc.repo.Delete(id); err != nil {
		respondStoreError(c, err, "collection", "delete collection")
		return
	}

	respondSuccess(c, "collection deleted")
}

// Books returns the books held by a collection.
// GET /api/collections/:id/books
func (cc *CollectionsController) Books(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := cc.authorize(c, id); !ok {
		return
	}

	result, err := cc.repo.Books(id)
	if err != nil {
		respondStoreError(c, err, "collection", "list collection books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddBook links a book into a collection.
// POST /api/collections/:id/books
func (cc *CollectionsController) AddBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		BookID uint `json:"book_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	if _, ok := cc.authorize(c, id); !ok {
		return
	}

	if err := cc.repo.AddBook(id, req.BookID); err != nil {
		respondStoreError(c, err, "book", "add book to collection")
		return
	}

	respondCreated(c, SuccessResponse{Message: "book added to collection"})
}

// RemoveBook unlinks a book from a collection.
// DELETE /api/collections/:id/books/:bookID
func (cc *CollectionsController) RemoveBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookID")
	if !ok {
		return
	}

	if _, ok := cc.authorize(c, id); !ok {
		return
	}

	if err := cc.repo.RemoveBook(id, bookID); err != nil {
		respondStoreError(c, err, "book", "remove book from collection")
		return
	}

	respondSuccess(c, "book removed from collection")
}
