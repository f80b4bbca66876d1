package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/man2412/Ride-Hailing-Platform/internal/handler"
	"github.com/man2412/Ride-Hailing-Platform/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	DriverHandler  *handler.DriverHandler
	TripHandler    *handler.TripHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	AuthSecret     string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	auth := middleware.RequireAuth(deps.AuthSecret)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Driver routes. Registration is the onboarding entry point and
		// carries no token.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("/:id", auth, deps.DriverHandler.Get)
			drivers.PATCH("/:id/status", auth, deps.DriverHandler.UpdateStatus)
			drivers.POST("/:id/location", auth, deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/accept", auth, deps.DriverHandler.Accept)
		}

		// Ride routes.
		rides := v1.Group("/rides", auth)
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}

		// Trip routes.
		trips := v1.Group("/trips", auth)
		{
			trips.POST("/:id/start", deps.TripHandler.Start)
			trips.POST("/:id/pause", deps.TripHandler.Pause)
			trips.POST("/:id/resume", deps.TripHandler.Resume)
			trips.POST("/:id/end", deps.TripHandler.End)
		}

		// Payment routes.
		payments := v1.Group("/payments", auth)
		{
			payments.POST("", deps.PaymentHandler.Create)
			payments.GET("/:id", deps.PaymentHandler.Get)
		}
	}

	return router
}
