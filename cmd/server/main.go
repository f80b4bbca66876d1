package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/app"
	"github.com/man2412/Ride-Hailing-Platform/internal/config"
	"github.com/man2412/Ride-Hailing-Platform/internal/handler"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	internalRedis "github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository/postgres"
	"github.com/man2412/Ride-Hailing-Platform/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger.Init(cfg.Server.Env)
	defer logger.Sync()
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			log.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	server, matchingService, locationService := wireServer(db, redisClient, nrApp, cfg)

	matchingService.Start()
	locationService.Start()

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	// Drain background work after the HTTP surface stops producing it.
	matchingService.Stop()
	locationService.Stop()

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the background services main owns the lifecycle of.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.MatchingService, *service.LocationService) {
	// Redis stores.
	geoIndex := internalRedis.NewGeoIndex(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	surgeStore := internalRedis.NewSurgeStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Payment provider: real adapter when credentials are present, stub
	// otherwise.
	var provider service.Provider
	if cfg.PSP.APIKey != "" {
		provider = service.NewHTTPProvider(cfg.PSP.BaseURL, cfg.PSP.APIKey, cfg.PSP.Timeout)
	} else {
		provider = service.NewStubProvider()
	}

	// Services.
	pricingService := service.NewPricingService()
	surgeService := service.NewSurgeService(surgeStore, geoIndex, cfg.Surge.MaxMultiplier)
	matchingService := service.NewMatchingService(
		db, geoIndex, lockStore, surgeStore, cacheStore,
		cfg.Matching.RadiusKM, cfg.Matching.LockTTL, cfg.Matching.MaxRetries,
	)
	locationService := service.NewLocationService(driverRepo, geoIndex, cacheStore)
	rideService := service.NewRideService(db, rideRepo, matchingService, surgeService, pricingService, surgeStore, cacheStore)
	driverService := service.NewDriverService(driverRepo, geoIndex, cacheStore)
	tripService := service.NewTripService(db, rideRepo, tripRepo, pricingService, cacheStore)
	paymentService := service.NewPaymentService(db, paymentRepo, tripRepo, rideRepo, provider, cacheStore)

	// Handlers.
	rideHandler := handler.NewRideHandler(rideService)
	driverHandler := handler.NewDriverHandler(driverService, locationService, tripService, cfg.Auth.SecretKey, cfg.Auth.AccessTokenExpiry)
	tripHandler := handler.NewTripHandler(tripService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := app.NewRouter(app.RouterDeps{
		RideHandler:    rideHandler,
		DriverHandler:  driverHandler,
		TripHandler:    tripHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		AuthSecret:     cfg.Auth.SecretKey,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, matchingService, locationService
}
