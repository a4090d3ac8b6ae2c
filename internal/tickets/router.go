package tickets

import (
	"playpark/internal/shared/config"
	"playpark/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes configures all ticket routes. Everything here is a
// gate-staff operation.
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	t := rg.Group("/tickets")
	t.Use(middleware.JWTAuth(cfg), middleware.RequireStaff())
	{
		t.POST("/validate", controller.ValidateTicket)        // POST /api/v1/tickets/validate
		t.GET("/:idOrNumber", controller.GetTicket)           // GET /api/v1/tickets/:idOrNumber
		t.POST("/:idOrNumber/check-in", controller.CheckIn)   // POST /api/v1/tickets/:idOrNumber/check-in
		t.POST("/:idOrNumber/check-out", controller.CheckOut) // POST /api/v1/tickets/:idOrNumber/check-out
	}
}
