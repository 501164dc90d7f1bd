package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/tasks"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Today   string            `json:"today,omitempty"` // civil date used for due dates and fines
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Queues  []string          `json:"queues,omitempty"`
}

// HealthController reports whether the database answers and which
// background queues are running. Only a database failure is unhealthy.
type HealthController struct {
	db      *database.Database
	queue   *tasks.Client
	service *circulation.Service
	version string
}

func NewHealthController(cfg RouterConfig) *HealthController {
	return &HealthController{
		db:      cfg.Database,
		queue:   cfg.TaskClient,
		service: cfg.Circulation,
		version: cfg.Version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks: map[string]string{
			"database":   h.checkDatabase(c.Request.Context()),
			"task_queue": "disabled",
		},
	}
	if resp.Checks["database"] != "ok" && resp.Checks["database"] != "not configured" {
		resp.Status = "unhealthy"
	}

	if h.queue != nil {
		resp.Checks["task_queue"] = "ok"
		resp.Queues = h.queue.Queues()
	}
	if h.service != nil {
		resp.Today = h.service.Today().Format(time.DateOnly)
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
