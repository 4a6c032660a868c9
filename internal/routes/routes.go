package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/revaspay/paygate/internal/metrics"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// RegisterHealthRoutes registers GET /health
func RegisterHealthRoutes(router *gin.Engine, checks map[string]HealthCheck) {
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failing := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failing[name] = err.Error()
			}
		}

		if len(failing) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": failing})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterMetricsRoute registers GET /metrics
func RegisterMetricsRoute(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
