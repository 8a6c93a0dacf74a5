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
	"github.com/stwalsh4118/landbroker/api/internal/cache"
	"github.com/stwalsh4118/landbroker/api/internal/config"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/handlers"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
	"github.com/stwalsh4118/landbroker/api/internal/repository"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Landbroker API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx)
		if err != nil {
			log.Fatal("Failed to apply schema migrations", err, nil)
		}
		log.Info("Schema up to date", map[string]interface{}{
			"applied": applied,
			"version": database.SchemaVersion(),
		})
	}

	// Optional Redis record cache
	var recordCache cache.RecordCache
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", err, nil)
	}
	if redisClient != nil {
		defer redisClient.Close()
		recordCache = cache.NewRedisRecordCache(redisClient, cfg.Redis.CacheTTL)
		log.Info("Record cache enabled", map[string]interface{}{
			"ttl": cfg.Redis.CacheTTL.String(),
		})
	}

	m := metrics.New()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Actor -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log, m))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Actor())
	router.Use(middleware.Metrics(m))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(db, handlers.RedisPinger(redisClient), cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize repository and service layers
	landRepo := repository.NewLandRepository()
	ledgerRepo := repository.NewLedgerRepository()
	landCodeRepo := repository.NewLandCodeRepository()
	purchaseRepo := repository.NewPurchaseRepository()

	ledgerService := services.NewLedgerService(db, ledgerRepo, m, log)
	workflow := services.NewWorkflow(landRepo, ledgerService, m, log)
	landService := services.NewLandService(db, landRepo, ledgerService, workflow, recordCache, m, log)
	verificationService := services.NewVerificationService(landService)
	landCodeService := services.NewLandCodeService(db, landCodeRepo, m, log)
	purchaseService := services.NewPurchaseService(db, purchaseRepo, landRepo, m, log)

	// Initialize handlers and register API v1 routes
	files := handlers.NewFileResolver(cfg.Files.BaseURL)
	handlers.Handlers{
		Lands:     handlers.NewLandHandler(landService, verificationService, files),
		LandCodes: handlers.NewLandCodeHandler(landCodeService),
		Purchases: handlers.NewPurchaseHandler(purchaseService, files),
		Ledger:    handlers.NewLedgerHandler(ledgerService),
	}.Register(router.Group("/api/v1"))

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
