package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database"
)

// StatisticsController handles the /api/statistics endpoint.
type StatisticsController struct {
	db *database.Database
}

// NewStatisticsController creates a statistics controller.
func NewStatisticsController(db *database.Database) *StatisticsController {
	return &StatisticsController{db: db}
}

// Get returns catalog-wide row counts and cover coverage.
// GET /api/statistics
func (sc *StatisticsController) Get(c *gin.Context) {
	stats, err := sc.db.Statistics()
	if err != nil {
		respondInternalError(c, err, "compute statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
