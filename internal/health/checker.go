package health

import (
	"context"
	"sync"
	"time"

	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Check is one dependency probe. A failing non-critical check only degrades
// the overall status.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	checks     []Check
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
	timeout    time.Duration

	mu     sync.RWMutex
	latest *OverallHealth
}

func NewHealthChecker(healthRepo models.SystemHealthRepository, logger *logrus.Logger, checks ...Check) *HealthChecker {
	return &HealthChecker{
		checks:     checks,
		healthRepo: healthRepo,
		logger:     logger,
		timeout:    5 * time.Second,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckService runs a single probe and records the outcome.
func (h *HealthChecker) CheckService(ctx context.Context, check Check) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := check.Ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = StatusUnhealthy
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", check.Name).Error("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(check.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", check.Name).Warn("Failed to record health status")
		}
	}

	return ServiceHealth{
		Name:         check.Name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll probes every service concurrently.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, len(h.checks))

	var g errgroup.Group
	for i, check := range h.checks {
		i, check := i, check
		g.Go(func() error {
			services[i] = h.CheckService(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	overallStatus := StatusHealthy
	for i, check := range h.checks {
		if services[i].Status == StatusHealthy {
			continue
		}
		if check.Critical {
			overallStatus = StatusUnhealthy
		} else if overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	health := OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}

	h.mu.Lock()
	h.latest = &health
	h.mu.Unlock()

	return health
}

// CheckCached returns the result of the last full check, if any.
func (h *HealthChecker) CheckCached() (*OverallHealth, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return nil, false
	}
	cached := *h.latest
	cached.Uptime = h.getUptime()
	return &cached, true
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
