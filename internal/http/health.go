package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sfn101/book-manager/internal/database"
)

// HealthResponse reports service liveness plus per-dependency checks.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db        *database.Database
	version   string
	startedAt time.Time
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:        db,
		version:   version,
		startedAt: time.Now(),
	}
}

// Status reports whether the service and its database are reachable.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{"database": h.checkDatabase(c)}

	status := "healthy"
	statusCode := http.StatusOK
	for _, result := range checks {
		if strings.HasPrefix(result, "error:") {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) checkDatabase(c *gin.Context) string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
