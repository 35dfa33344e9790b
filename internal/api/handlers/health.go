package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/frostyapps/cortex-demos/internal/health"
	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/pkg/utils"
	"github.com/gin-gonic/gin"
)

type HealthReporter interface {
	CheckAll(ctx context.Context) health.OverallHealth
	CheckCached() (*health.OverallHealth, bool)
}

type HealthHandler struct {
	reporter HealthReporter
	service  string
}

func NewHealthHandler(reporter HealthReporter, service string) *HealthHandler {
	return &HealthHandler{reporter: reporter, service: service}
}

// HandleHealth is a liveness probe. It does not touch dependencies.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    health.StatusHealthy,
		Service:   h.service,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HandleDetailed reports per-dependency status. The last periodic result is
// served unless ?fresh=true is passed.
func (h *HealthHandler) HandleDetailed(c *gin.Context) {
	var overall health.OverallHealth
	if cached, ok := h.reporter.CheckCached(); ok && c.Query("fresh") != "true" {
		overall = *cached
	} else {
		overall = h.reporter.CheckAll(c.Request.Context())
	}

	code := http.StatusOK
	if overall.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	services := make(map[string]string, len(overall.Services))
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}

	utils.SuccessResponse(c, code, "Health status retrieved", gin.H{
		"status":    overall.Status,
		"service":   h.service,
		"uptime":    overall.Uptime,
		"services":  services,
		"details":   overall.Services,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
