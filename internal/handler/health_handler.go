package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labparse/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	parseService service.ParseService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(parseService service.ParseService) *HealthHandler {
	return &HealthHandler{parseService: parseService}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready once adapters are
// registered.
func (h *HealthHandler) Readiness(c *gin.Context) {
	n := len(h.parseService.Formats())
	if n == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no adapters registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "adapters": n})
}
