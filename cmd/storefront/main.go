package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cardora/giftcard-market/internal/catalog"
	"github.com/cardora/giftcard-market/internal/checkout"
	"github.com/cardora/giftcard-market/internal/merchant"
	"github.com/cardora/giftcard-market/internal/orders"
	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/cache"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/config"
	"github.com/cardora/giftcard-market/pkg/errors"
	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/middleware"
	redisclient "github.com/cardora/giftcard-market/pkg/redis"
)

const (
	serviceName = "storefront"
	version     = "1.0.0"
)

func breakerSettings(s config.CircuitBreakerSettings) upstream.BreakerSettings {
	return upstream.BreakerSettings{
		FailureThreshold: uint32(s.FailureThreshold),
		SuccessThreshold: uint32(s.SuccessThreshold),
		Interval:         time.Duration(s.IntervalSeconds) * time.Second,
		Timeout:          time.Duration(s.TimeoutSeconds) * time.Second,
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting storefront service", zap.String("version", version))

	// Initialize error tracking
	if cfg.Sentry.Enabled {
		sentryCfg := errors.DefaultSentryConfig()
		sentryCfg.DSN = cfg.Sentry.DSN
		sentryCfg.ServerName = serviceName
		if err := errors.InitSentry(sentryCfg); err != nil {
			log.Warn("Failed to initialize sentry, continuing without error tracking", zap.Error(err))
		} else {
			defer errors.Flush(2 * time.Second)
		}
	}

	// Initialize redis
	rdb, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	log.Info("Connected to redis")

	cacheManager := cache.NewManager(rdb)

	// Upstream gift card API client. Breaker tuning honors per-transport
	// overrides from CB_SERVICE_OVERRIDES.
	api := upstream.NewClient(upstream.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		APIKey:       cfg.Upstream.APIKey,
		Timeout:      cfg.Upstream.Timeout(),
		ReadBreaker:  breakerSettings(cfg.Resilience.CircuitBreaker.SettingsFor("giftcard-reads")),
		WriteBreaker: breakerSettings(cfg.Resilience.CircuitBreaker.SettingsFor("giftcard-writes")),
	})

	// Services and handlers
	catalogService := catalog.NewService(api, cacheManager, cfg.Cache.ProductTTL())
	catalogHandler := catalog.NewHandler(catalogService)

	merchantService := merchant.NewService(api, cacheManager, cfg.Cache.ProfileTTL(), cfg.Cache.ProfileStaleAfter())
	merchantHandler := merchant.NewHandler(merchantService)

	checkoutService := checkout.NewService(catalogService, merchantService, api, cfg.Upstream.SuccessURL, cfg.Upstream.FailureURL)
	checkoutHandler := checkout.NewHandler(checkoutService)

	orderService := orders.NewService(api)
	orderHandler := orders.NewHandler(orderService)

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestTimeout(30 * time.Second))

	// Health and readiness
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/readyz", common.ReadinessProbe(serviceName, version, map[string]func() error{
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err()
		},
	}))

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	catalogHandler.RegisterRoutes(router, cfg.JWT.Secret)
	checkoutHandler.RegisterRoutes(router, cfg.JWT.Secret)
	orderHandler.RegisterRoutes(router, cfg.JWT.Secret)
	merchantHandler.RegisterRoutes(router, cfg.JWT.Secret)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with 30 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
