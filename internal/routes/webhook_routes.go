package routes

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/revaspay/paygate/internal/handlers"
	"github.com/revaspay/paygate/internal/middleware"
)

// SetupWebhookRoutes registers the PayGate Global webhook at /<route>.
// It is public; authenticity comes from the signature header.
func SetupWebhookRoutes(router *gin.Engine, route string, h *handlers.WebhookHandler, limiter *middleware.RateLimiter) {
	path := "/" + strings.Trim(route, "/")
	router.POST(path, limiter.Middleware(), h.HandlePayGateWebhook)
}
