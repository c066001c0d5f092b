package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arena-tix/service-booking/internal/adapter"
	"github.com/arena-tix/service-booking/internal/application"
	"github.com/arena-tix/service-booking/internal/config"
	"github.com/arena-tix/service-booking/internal/events"
	"github.com/arena-tix/service-booking/internal/handler"
	"github.com/arena-tix/service-booking/internal/logger"
	"github.com/arena-tix/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DBConfig.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations (dev auto-migrate)
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(repository.AllModels()...); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize Redis for the catalog cache
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid REDIS_URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.KafkaBrokers, zapLogger)
	defer producer.Close()

	// Initialize FX provider
	fxProvider := adapter.NewERAPIProvider(cfg.FxConfig.BaseURL, cfg.FxConfig.Timeout, zapLogger)

	// Initialize repositories
	catalogRepo := repository.NewGormCatalogRepository(db)
	cachedCatalog := repository.NewCachedCatalogRepository(catalogRepo, redisClient, zapLogger)
	reservationRepo := repository.NewGormReservationRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	store := repository.NewGormStore(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		catalogRepo, store, reservationRepo, promoRepo,
		fxProvider, producer,
		cfg.BaseCurrency, cfg.PromoIssuePct, zapLogger,
	)
	promoService := application.NewPromoService(promoRepo, zapLogger)
	fxService := application.NewFxService(catalogRepo, fxProvider, cfg.BaseCurrency, zapLogger)
	reportService := application.NewReportService(reservationRepo, zapLogger)

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(bookingService)
	promoHandler := handler.NewPromoHandler(promoService)
	catalogHandler := handler.NewCatalogHandler(cachedCatalog, fxService)
	adminHandler := handler.NewAdminHandler(reportService, cfg.AdminSecret)
	healthHandler := handler.NewHealthHandler(db)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(handler.Recovery(zapLogger))
	router.Use(handler.RequestID())
	router.Use(handler.RequestLogger(zapLogger))

	router.GET("/health", healthHandler.Check)

	apiV1 := router.Group("/api/v1")
	reservationHandler.RegisterRoutes(apiV1)
	promoHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
