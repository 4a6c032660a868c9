package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/revaspay/paygate/internal/handlers"
	"github.com/revaspay/paygate/internal/middleware"
)

// SetupPayGateRoutes sets up the merchant PayGate API
func SetupPayGateRoutes(router *gin.Engine, h *handlers.PayGateHandler, apiKey string) {
	api := router.Group("/api/v1/paygate")
	api.Use(middleware.APIKeyMiddleware(apiKey))
	{
		api.POST("/payments", h.InitiatePayment)
		api.POST("/payment-url", h.PaymentURL)
		api.GET("/status/:tx_reference", h.CheckStatus)
		api.GET("/status/identifier/:identifier", h.CheckStatusByIdentifier)
		api.GET("/balance", h.CheckBalance)
		api.POST("/disbursements", h.Disburse)
	}
}
