package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scrollfeed/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components,omitempty"`
}

// Health returns a handler that aggregates component health. Any unhealthy
// component makes the service unhealthy (503); a degraded one degrades it.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:    component.StatusHealthy,
			Service:   serviceName,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if checker != nil {
			resp.Components = checker(c.Request.Context())
			resp.Status = Aggregate(resp.Components)
		}

		status := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// Aggregate folds component statuses into one.
func Aggregate(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}
