package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/http/handlers"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/http/middleware"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/ratelimit"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler    *handlers.ImageHandler
	downloadHandler *handlers.DownloadHandler
	limiter         *ratelimit.Limiter
	cfg             *config.Config
	logger          *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	downloadHandler *handlers.DownloadHandler,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler:    imageHandler,
		downloadHandler: downloadHandler,
		limiter:         limiter,
		cfg:             cfg,
		logger:          logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.cfg.CORS))
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		// Health stays outside the rate limit so probes never trip it.
		v1.GET("/health", r.imageHandler.HealthCheck)

		limited := v1.Group("")
		limited.Use(middleware.RateLimit(r.limiter))
		{
			limited.GET("/usage", r.imageHandler.GetUsage)

			images := limited.Group("/images")
			{
				images.POST("/process", r.imageHandler.ProcessImages)
				images.GET("/download", r.downloadHandler.DownloadImage)
				images.POST("/download/zip", r.downloadHandler.DownloadZip)
			}

			batches := limited.Group("/batches")
			{
				batches.GET("/:id", r.imageHandler.GetBatch)
				batches.GET("/:id/download-url", r.downloadHandler.BatchDownloadURL)
			}
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "FBA image optimizer is running",
		})
	})

	return router
}
