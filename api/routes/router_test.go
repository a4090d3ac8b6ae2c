package routes

import (
	"testing"

	"playpark/internal/notifications"
	"playpark/internal/shared/config"
	"playpark/internal/shared/database"
	"playpark/pkg/logger"

	"github.com/gin-gonic/gin"
)

func testConfig(ginMode string) *config.Config {
	return &config.Config{
		GinMode:    ginMode,
		APIVersion: "v1",
		APIPrefix:  "/api",
		Venue: config.VenueConfig{
			Timezone:     "Asia/Dhaka",
			TicketPrefix: "PP",
		},
	}
}

func routePaths(engine *gin.Engine) map[string]bool {
	paths := make(map[string]bool)
	for _, route := range engine.Routes() {
		paths[route.Path] = true
	}
	return paths
}

func setupTestEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New()
	router := NewRouter(cfg, &database.DB{}, notifications.NewLogDispatcher(log, "880"), log)

	engine := gin.New()
	if err := router.SetupRoutes(engine); err != nil {
		t.Fatalf("SetupRoutes() error = %v", err)
	}
	return engine
}

func TestSwaggerRouteOnlyInDevelopment(t *testing.T) {
	t.Run("mounted in debug mode", func(t *testing.T) {
		paths := routePaths(setupTestEngine(t, testConfig("debug")))
		if !paths["/swagger/*any"] {
			t.Error("expected /swagger/*any to be registered in debug mode")
		}
	})

	t.Run("absent in release mode", func(t *testing.T) {
		paths := routePaths(setupTestEngine(t, testConfig("release")))
		if paths["/swagger/*any"] {
			t.Error("expected /swagger/*any to be absent in release mode")
		}
	})
}

func TestAPIRoutesRegistered(t *testing.T) {
	paths := routePaths(setupTestEngine(t, testConfig("release")))

	for _, want := range []string{
		"/health",
		"/api/v1/slots/day",
		"/api/v1/bookings",
		"/api/v1/payments/webhook",
		"/api/v1/tickets/validate",
	} {
		if !paths[want] {
			t.Errorf("expected route %s to be registered", want)
		}
	}
}
