package bookings

import (
	"playpark/internal/shared/config"
	"playpark/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	b := rg.Group("/bookings")
	{
		// Customer-facing reservation flow
		b.POST("", controller.CreateBooking) // POST /api/v1/bookings
		b.GET("/:id", controller.GetBooking) // GET  /api/v1/bookings/:id

		// Staff operations
		staff := b.Group("")
		staff.Use(middleware.JWTAuth(cfg), middleware.RequireStaff())
		{
			staff.GET("", controller.ListBookings)              // GET  /api/v1/bookings
			staff.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
		}
	}
}
