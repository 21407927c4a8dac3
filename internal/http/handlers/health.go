package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"rps_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	game      *service.GameService
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(game *service.GameService, version string) *HealthHandler {
	return &HealthHandler{
		game:      game,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents readiness response
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	Uptime        string            `json:"uptime,omitempty"`
	Timestamp     string            `json:"timestamp"`
	SchemaVersion int               `json:"schema_version"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// Health is the fixed liveness indicator used by the frontend; it touches nothing.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness checks the statistics store (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"
	statusCode := http.StatusOK

	version, err := h.game.Readiness(ctx)
	if err != nil {
		checks["store"] = "unhealthy"
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["store"] = "healthy"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	c.JSON(statusCode, HealthResponse{
		Status:        status,
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		SchemaVersion: version,
		Checks:        checks,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
