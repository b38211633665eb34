package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool and caching.CacheService.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	storage Pinger
	version string
	started time.Time
}

func NewHealthHandlers(db, cache, storage Pinger, version string) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, storage: storage, version: version, started: time.Now()}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) check(ctx context.Context) (map[string]error, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := map[string]error{
		"database": h.db.Ping(ctx),
		"redis":    h.cache.Ping(ctx),
		"storage":  h.storage.Ping(ctx),
	}
	healthy := true
	for _, err := range results {
		if err != nil {
			healthy = false
		}
	}
	return results, healthy
}

// HealthCheck godoc
// @Summary  Dependency health
// @Description 200 when the database, Redis and object storage respond, 206 when any is degraded.
// @Tags     health
// @Produce  json
// @Success  200 {object} HealthStatus
// @Success  206 {object} HealthStatus
// @Router   /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	results, healthy := h.check(c.Request().Context())
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, len(results)),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	for name, err := range results {
		if err != nil {
			health.Services[name] = "unhealthy"
		} else {
			health.Services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		health.Status = "degraded"
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck fails when the database or Redis is unreachable.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	results, _ := h.check(c.Request().Context())
	if results["database"] != nil || results["redis"] != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "alive",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"goroutines": runtime.NumGoroutine(),
	})
}

// DetailedHealthCheck reports each dependency with its error message.
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	results, healthy := h.check(c.Request().Context())
	checks := make(map[string]map[string]string, len(results))
	for name, err := range results {
		check := map[string]string{"status": "healthy"}
		if err != nil {
			check["status"] = "unhealthy"
			check["message"] = err.Error()
		}
		checks[name] = check
	}

	overall, statusCode := "healthy", http.StatusOK
	if !healthy {
		overall, statusCode = "degraded", http.StatusPartialContent
	}
	return c.JSON(statusCode, map[string]any{
		"overall_status": overall,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        h.version,
		"goroutines":     runtime.NumGoroutine(),
	})
}
