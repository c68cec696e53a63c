package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/auth"
	"github.com/sfn101/book-manager/internal/database/users"
	"github.com/sfn101/book-manager/internal/entities"
)

// UsersController handles the admin-only /api/users endpoints.
type UsersController struct {
	repo *users.Repository
}

// NewUsersController creates a users controller.
func NewUsersController(repo *users.Repository) *UsersController {
	return &UsersController{repo: repo}
}

// List returns all users ordered by registration time.
// GET /api/users
func (uc *UsersController) List(c *gin.Context) {
	result, err := uc.repo.List()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one user.
// GET /api/users/:id
func (uc *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.repo.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "user", "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update changes a user's username, email or role.
// PUT /api/users/:id
func (uc *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	fields := users.UpdateFields{
		Username: req.Username,
		Email:    req.Email,
	}
	if req.Role != nil {
		role := entities.UserRole(*req.Role)
		if !role.Valid() {
			respondBadRequest(c, "role must be 'admin' or 'user'")
			return
		}
		fields.Role = &role
	}

	user, err := uc.repo.Update(id, fields)
	if err != nil {
		respondStoreError(c, err, "user", "update user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes a user together with their collections.
// DELETE /api/users/:id
func (uc *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Admins cannot delete their own account.
	if id == auth.GetUserID(c) {
		respondBadRequest(c, "cannot delete your own account")
		return
	}

	if err := uc.repo.Delete(id); err != nil {
		respondStoreError(c, err, "user", "delete user")
		return
	}

	respondSuccess(c, "user deleted")
}
