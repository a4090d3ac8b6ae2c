package payments

import (
	"playpark/internal/shared/config"
	"playpark/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures all payment routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	p := rg.Group("/payments")
	{
		// Customer-facing checkout flow
		p.POST("/initiate", controller.InitiatePayment) // POST /api/v1/payments/initiate
		p.POST("/verify", controller.VerifyPayment)     // POST /api/v1/payments/verify

		// Provider push channel, authenticated by API key header
		p.POST("/webhook", controller.HandleWebhook) // POST /api/v1/payments/webhook

		// Staff-only payment history
		staff := p.Group("")
		staff.Use(middleware.JWTAuth(cfg), middleware.RequireStaff())
		{
			staff.GET("/booking/:bookingId", controller.ListForBooking) // GET /api/v1/payments/booking/:bookingId
		}
	}
}
