package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Healthy(c.Request.Context()); err != nil {
			logger.Error("session store unreachable", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "store": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// backendHealth relays the backend's own health report. An unhealthy
// backend answers 503 with the same report shape.
func (h *Handler) backendHealth(c *gin.Context) {
	report, err := h.api.Health.Check(c.Request.Context())

	var apiErr *backend.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		if json.Unmarshal(apiErr.Payload, &report) == nil && report.Status != "" {
			c.JSON(http.StatusServiceUnavailable, report)
			return
		}
	}
	if err != nil {
		h.fail(c, "backend_health", err)
		return
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
