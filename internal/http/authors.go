package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database/authors"
	"github.com/sfn101/book-manager/internal/tasks"
)

// AuthorsController handles the /api/authors endpoints.
type AuthorsController struct {
	repo       *authors.Repository
	taskClient TaskEnqueuer
}

// NewAuthorsController creates an authors controller.
func NewAuthorsController(repo *authors.Repository, taskClient TaskEnqueuer) *AuthorsController {
	return &AuthorsController{repo: repo, taskClient: taskClient}
}

// List returns all authors with their book counts and titles, most
// prolific first.
// GET /api/authors
func (ac *AuthorsController) List(c *gin.Context) {
	summaries, err := ac.repo.List()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// Search returns the authors whose name contains the query.
// GET /api/authors/search?name=
func (ac *AuthorsController) Search(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respondBadRequest(c, "query parameter 'name' is required")
		return
	}

	summaries, err := ac.repo.Search(name)
	if err != nil {
		respondInternalError(c, err, "search authors")
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// Get returns one author.
// GET /api/authors/:id
func (ac *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "author", "get author")
		return
	}

	c.JSON(http.StatusOK, author)
}

// Create adds an author.
// POST /api/authors
func (ac *AuthorsController) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	author, err := ac.repo.Create(req.Name)
	if err != nil {
		respondStoreError(c, err, "author", "create author")
		return
	}

	if ac.taskClient != nil {
		_, _ = ac.taskClient.Add(tasks.EnrichAuthorImageTask{AuthorID: author.ID}).Save()
	}

	respondCreated(c, author)
}

// Update renames an author or sets their image URL.
// PUT /api/authors/:id
func (ac *AuthorsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.ImageURL != nil {
		if *req.ImageURL != "" && !strings.HasPrefix(*req.ImageURL, "http") {
			respondBadRequest(c, "image_url must be a full URL")
			return
		}
		if err := ac.repo.SetImageURL(id, *req.ImageURL); err != nil {
			respondStoreError(c, err, "author", "set author image")
			return
		}
	}

	if req.Name != nil {
		if *req.Name == "" {
			respondBadRequest(c, "name cannot be empty")
			return
		}
		author, err := ac.repo.Rename(id, *req.Name)
		if err != nil {
			respondStoreError(c, err, "author", "rename author")
			return
		}
		c.JSON(http.StatusOK, author)
		return
	}

	author, err := ac.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "author", "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// SetImage stores an author's photo URL.
// POST /api/authors/:id/image
func (ac *AuthorsController) SetImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "image_url is required")
		return
	}
	if !strings.HasPrefix(req.ImageURL, "http") {
		respondBadRequest(c, "image_url must be a full URL")
		return
	}

	if err := ac.repo.SetImageURL(id, req.ImageURL); err != nil {
		respondStoreError(c, err, "author", "set author image")
		return
	}

	author, err := ac.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "author", "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// Delete removes an author, unlinking them from their books.
// DELETE /api/authors/:id
func (ac *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.repo.Delete(id); err != nil {
		respondStoreError(c, err, "author", "delete author")
		return
	}

	respondSuccess(c, "author deleted")
}
