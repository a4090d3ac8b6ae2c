// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"playpark/internal/bookings"
	"playpark/internal/notifications"
	"playpark/internal/payments"
	"playpark/internal/shared/config"
	"playpark/internal/shared/database"
	"playpark/internal/slots"
	"playpark/internal/tickets"
	"playpark/pkg/cache"
	"playpark/pkg/clock"
	"playpark/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config     *config.Config
	db         *database.DB
	dispatcher notifications.Dispatcher
	logger     *logger.Logger

	// Services kept for cross-package injection
	slotService    slots.Service
	bookingRepo    bookings.Repository
	bookingService bookings.Service
	ticketService  tickets.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, dispatcher notifications.Dispatcher, log *logger.Logger) *Router {
	return &Router{
		config:     cfg,
		db:         db,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Swagger UI, development only
	if r.config.IsDevelopment() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSlotRoutes(api)
		r.setupBookingRoutes(api)

		if err := r.setupTicketRoutes(api); err != nil {
			return err
		}

		// Payments last: reconciliation needs the ticket service
		r.setupPaymentRoutes(api)
	}
	return nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "playpark-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "playpark-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupSlotRoutes configures the slot calendar routes
func (r *Router) setupSlotRoutes(rg *gin.RouterGroup) {
	slotRepo := slots.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedisClient())
	r.slotService = slots.NewService(slotRepo, cacheService, r.config.Redis.SlotCacheTTL)
	slotController := slots.NewController(r.slotService)

	slots.SetupSlotRoutes(rg, slotController, r.config)
}

// setupBookingRoutes configures booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	r.bookingRepo = bookings.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(r.bookingRepo, r.slotService, r.dispatcher)
	bookingController := bookings.NewController(r.bookingService)

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupTicketRoutes configures gate-staff ticket routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) error {
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService, err := tickets.NewService(ticketRepo, r.bookingRepo, clock.NewSystem(), r.config.Venue, r.logger)
	if err != nil {
		return err
	}
	r.ticketService = ticketService
	ticketController := tickets.NewController(ticketService)

	tickets.SetupTicketRoutes(rg, ticketController, r.config)
	return nil
}

// setupPaymentRoutes configures checkout, webhook, and verify routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	gateway := payments.NewHTTPGateway(r.config.Payment)
	paymentService := payments.NewService(paymentRepo, gateway, r.bookingRepo, r.ticketService, r.dispatcher, r.config.Payment, r.logger)
	paymentController := payments.NewController(paymentService, r.config.Payment, r.logger)

	payments.SetupPaymentRoutes(rg, paymentController, r.config)
}
