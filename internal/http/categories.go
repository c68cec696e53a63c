package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database/categories"
)

// CategoriesController handles the /api/categories endpoints.
type CategoriesController struct {
	repo *categories.Repository
}

// NewCategoriesController creates a categories controller.
func NewCategoriesController(repo *categories.Repository) *CategoriesController {
	return &CategoriesController{repo: repo}
}

// List returns all categories sorted by name.
// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	result, err := cc.repo.List()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one category.
// GET /api/categories/:id
func (cc *CategoriesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := cc.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "category", "get category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// Create adds a category.
// POST /api/categories
func (cc *CategoriesController) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.repo.Create(req.Name)
	if err != nil {
		respondStoreError(c, err, "category", "create category")
		return
	}

	respondCreated(c, category)
}

// Update renames a category.
// PUT /api/categories/:id
func (cc *CategoriesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.repo.Rename(id, req.Name)
	if err != nil {
		respondStoreError(c, err, "category", "rename category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// Delete removes a category, unlinking it from its books.
// DELETE /api/categories/:id
func (cc *CategoriesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.repo.Delete(id); err != nil {
		respondStoreError(c, err, "category", "delete category")
		return
	}

	respondSuccess(c, "category deleted")
}
