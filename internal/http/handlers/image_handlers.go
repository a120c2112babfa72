package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/batch"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/cloudinary"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/quota"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/store"
	"go.uber.org/zap"
)

const imagesParamKey = "images"

// BatchStore persists finished batch results and recalls them by id.
type BatchStore interface {
	Save(ctx context.Context, result *models.BatchResult) error
	Get(ctx context.Context, batchID string) (*models.BatchResult, error)
}

type ImageHandler struct {
	orchestrator *batch.Orchestrator
	tracker      *quota.Tracker
	batches      BatchStore
	remote       *cloudinary.Client
	health       []HealthProbe
	logger       *zap.Logger
	config       *config.Config
}

// HealthProbe is one named component check for the health endpoint.
type HealthProbe struct {
	Name  string
	Check func() string
}

func NewImageHandler(
	orchestrator *batch.Orchestrator,
	tracker *quota.Tracker,
	batches BatchStore,
	remote *cloudinary.Client,
	health []HealthProbe,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		orchestrator: orchestrator,
		tracker:      tracker,
		batches:      batches,
		remote:       remote,
		health:       health,
		logger:       logger,
		config:       config,
	}
}

// === MAIN API ENDPOINTS ===

// ProcessImages accepts a multipart batch, runs it through the upload
// pipeline and returns the aggregated batch result.
func (h *ImageHandler) ProcessImages(c *gin.Context) {
	if !h.remote.Configured() {
		h.respondError(c, http.StatusServiceUnavailable,
			"image service credentials are not configured", models.CodeConfigurationError)
		return
	}

	sizes, err := models.ParseOutputSizes(c.PostForm("sizes"))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error(), models.CodeValidationError)
		return
	}

	files, err := h.readUploadedFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error(), models.CodeValidationError)
		return
	}

	result, err := h.orchestrator.Process(c.Request.Context(), files, sizes)
	if err != nil {
		h.respondBatchError(c, err)
		return
	}

	if err := h.batches.Save(c.Request.Context(), result); err != nil {
		h.logger.Warn("Failed to store batch result",
			zap.String("batch_id", result.BatchID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    result,
	})
}

// GetUsage returns the current quota snapshot without uploading anything.
func (h *ImageHandler) GetUsage(c *gin.Context) {
	snapshot := h.tracker.Check(c.Request.Context())
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    snapshot,
	})
}

// GetBatch returns a previously stored batch result.
func (h *ImageHandler) GetBatch(c *gin.Context) {
	result, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(c, http.StatusNotFound, "batch not found", models.CodeNotFound)
			return
		}
		h.logger.Error("Failed to load batch", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to load batch", models.CodeInternalError)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    result,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := make(map[string]string, len(h.health))
	for _, probe := range h.health {
		services[probe.Name] = probe.Check()
	}
	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
