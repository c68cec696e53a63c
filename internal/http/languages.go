package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database/languages"
)

// LanguagesController handles the /api/languages endpoints.
type LanguagesController struct {
	repo *languages.Repository
}

// NewLanguagesController creates a languages controller.
func NewLanguagesController(repo *languages.Repository) *LanguagesController {
	return &LanguagesController{repo: repo}
}

// List returns all languages sorted by name.
// GET /api/languages
func (lc *LanguagesController) List(c *gin.Context) {
	result, err := lc.repo.List()
	if err != nil {
		respondInternalError(c, err, "list languages")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one language.
// GET /api/languages/:id
func (lc *LanguagesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	language, err := lc.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "language", "get language")
		return
	}

	c.JSON(http.StatusOK, language)
}

// Create adds a language.
// POST /api/languages
func (lc *LanguagesController) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	language, err := lc.repo.Create(req.Name)
	if err != nil {
		respondStoreError(c, err, "language", "create language")
		return
	}

	respondCreated(c, language)
}

// Update renames a language.
// PUT /api/languages/:id
func (lc *LanguagesController) Update(c *gin.Context) {
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

	language, err := lc.repo.Rename(id, req.Name)
	if err != nil {
		respondStoreError(c, err, "language", "rename language")
		return
	}

	c.JSON(http.StatusOK, language)
}

// Delete removes a language, unlinking it from its books.
// DELETE /api/languages/:id
func (lc *LanguagesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.repo.Delete(id); err != nil {
		respondStoreError(c, err, "language", "delete language")
		return
	}

	respondSuccess(c, "language deleted")
}
