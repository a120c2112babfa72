package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/http/handlers"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/http/routes"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/archive"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/batch"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/cloudinary"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/notify"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/quota"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/ratelimit"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/relay"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/store"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.Cloudinary.Configured() {
		logger.Warn("Image service credentials missing, uploads will be refused until configured")
	}

	// Initialize services
	remote := cloudinary.NewClient(cfg.Cloudinary)
	tracker := quota.NewTracker(remote, logger)
	batches := store.NewBatchStore(cfg.Redis)
	archives := archive.NewStore(cfg.Supabase)
	imageRelay := relay.NewRelay(cfg.Upload, cloudinary.DeliveryHost, logger)

	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	defer limiter.Close()

	var notifier batch.Notifier
	publisher, err := notify.NewPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Warn("Failed to initialize event publisher", zap.Error(err))
		// Continue without batch notifications
	} else {
		notifier = publisher
		defer publisher.Close()
	}

	orchestrator := batch.NewOrchestrator(remote, tracker, notifier, logger, cfg.Upload)

	// Initialize handlers
	health := []handlers.HealthProbe{
		{Name: "redis", Check: func() string {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := batches.Ping(ctx); err != nil {
				return "unhealthy: " + err.Error()
			}
			return "healthy"
		}},
		{Name: "supabase", Check: func() string {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return archives.HealthCheck(ctx)
		}},
		{Name: "rabbitmq", Check: func() string {
			if publisher == nil {
				return "not configured"
			}
			return publisher.HealthCheck()
		}},
		{Name: "cloudinary", Check: func() string {
			if remote.Configured() {
				return "configured"
			}
			return "not configured"
		}},
	}

	imageHandler := handlers.NewImageHandler(orchestrator, tracker, batches, remote, health, logger, cfg)
	downloadHandler := handlers.NewDownloadHandler(imageRelay, batches, archives, logger)

	router := routes.NewRouter(imageHandler, downloadHandler, limiter, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
