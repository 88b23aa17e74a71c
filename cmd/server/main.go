package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkwon/comfystore-backend/config"
	"github.com/dkwon/comfystore-backend/internal/app/controller"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/dkwon/comfystore-backend/internal/router"
	"github.com/dkwon/comfystore-backend/internal/scheduler"
	"github.com/dkwon/comfystore-backend/internal/storage"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"github.com/dkwon/comfystore-backend/pkg/redis"
	"github.com/dkwon/comfystore-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting ComfyStore Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist; logout still degrades gracefully without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to redis, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}()
	}

	// Reap expired email verification codes in the background
	util.CleanupExpiredCodes()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	consistencyService := service.NewConsistencyService()
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, consistencyService, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, productRepo, consistencyService, db.GetDB())
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, db.GetDB())
	paymentService, err := service.NewPaymentService(orderRepo, orderService, cfg, db.GetDB())
	if err != nil {
		logger.Fatal("Failed to initialize payment service", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	reviewController := controller.NewReviewController(reviewService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	paymentController := controller.NewPaymentController(paymentService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		reviewController,
		cartController,
		orderController,
		paymentController,
		uploadController,
		authMiddleware,
		userRepo,
		cfg,
	)
	engine := r.Setup()

	// Start background sweep for abandoned pending orders
	orderScheduler := scheduler.NewOrderScheduler(orderService)
	if err := orderScheduler.Start(); err != nil {
		logger.Fatal("Failed to start order scheduler", err)
	}
	defer orderScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
