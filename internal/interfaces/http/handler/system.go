package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/aqueduct/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing dependency
type Pinger interface {
	Ping() error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database"`
}

// Health handles GET /health. It answers 503 when the database is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "ok",
	}

	if h.db == nil {
		resp.Database = "unconfigured"
	} else if err := pingWithin(c.Request.Context(), h.db, 2*time.Second); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}

	h.Success(c, resp)
}

func pingWithin(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Ping() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
