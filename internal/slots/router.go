package slots

import (
	"playpark/internal/shared/config"
	"playpark/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSlotRoutes configures all slot calendar routes
func SetupSlotRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	s := rg.Group("/slots")
	{
		// Public calendar: generates the day template on first access
		s.POST("/day", controller.GetDaySlots) // POST /api/v1/slots/day

		// Staff-only calendar maintenance
		staff := s.Group("")
		staff.Use(middleware.JWTAuth(cfg), middleware.RequireStaff())
		{
			staff.POST("/:id/block", controller.BlockSlot)     // POST /api/v1/slots/:id/block
			staff.POST("/:id/unblock", controller.UnblockSlot) // POST /api/v1/slots/:id/unblock
		}
	}
}
