package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/relay"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/store"
	"go.uber.org/zap"
)

type bundleRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// ArchiveStore persists batch archives and hands out shareable links.
type ArchiveStore interface {
	Configured() bool
	SaveArchive(ctx context.Context, batchID string, data []byte) (string, error)
}

type DownloadHandler struct {
	relay    *relay.Relay
	batches  BatchStore
	archives ArchiveStore
	logger   *zap.Logger
}

func NewDownloadHandler(
	relay *relay.Relay,
	batches BatchStore,
	archives ArchiveStore,
	logger *zap.Logger,
) *DownloadHandler {
	return &DownloadHandler{
		relay:    relay,
		batches:  batches,
		archives: archives,
		logger:   logger,
	}
}

// DownloadImage proxies one previously produced result URL back to the
// client with its original content type.
func (h *DownloadHandler) DownloadImage(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		h.respondError(c, http.StatusBadRequest, "missing url parameter", models.CodeValidationError)
		return
	}

	img, err := h.relay.FetchImage(c.Request.Context(), rawURL)
	if err != nil {
		if errors.Is(err, relay.ErrForeignHost) {
			h.respondError(c, http.StatusBadRequest, err.Error(), models.CodeValidationError)
			return
		}
		h.logger.Warn("Relay fetch failed", zap.String("url", rawURL), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, err.Error(), models.CodeRemoteFetchError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.FileName))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// DownloadZip bundles up to the configured number of result URLs into one
// archive. Entries that fail to fetch are skipped, not fatal.
func (h *DownloadHandler) DownloadZip(c *gin.Context) {
	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), models.CodeValidationError)
		return
	}

	data, added, err := h.relay.BuildBundle(c.Request.Context(), req.URLs)
	if err != nil {
		h.respondBundleError(c, err)
		return
	}

	h.logger.Info("Archive built", zap.Int("entries", added))

	name := fmt.Sprintf("optimized_images_%s.zip", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/zip", data)
}

// BatchDownloadURL rebuilds the archive for a stored batch, persists it and
// returns a shareable link.
func (h *DownloadHandler) BatchDownloadURL(c *gin.Context) {
	if !h.archives.Configured() {
		h.respondError(c, http.StatusServiceUnavailable,
			"archive storage is not configured", models.CodeConfigurationError)
		return
	}

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

	// One archive entry per image. The first output is the primary size,
	// so a full batch stays under the bundle cap no matter how many sizes
	// were requested.
	urls := make([]string, 0, len(result.Images))
	for _, img := range result.Images {
		if len(img.Outputs) == 0 {
			continue
		}
		urls = append(urls, img.Outputs[0].URL)
	}
	if len(urls) == 0 {
		h.respondError(c, http.StatusBadRequest, "batch has no optimized images", models.CodeValidationError)
		return
	}

	data, _, err := h.relay.BuildBundle(c.Request.Context(), urls)
	if err != nil {
		h.respondBundleError(c, err)
		return
	}

	downloadURL, err := h.archives.SaveArchive(c.Request.Context(), result.BatchID, data)
	if err != nil {
		h.logger.Error("Failed to persist archive", zap.String("batch_id", result.BatchID), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to store archive", models.CodeInternalError)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"download_url": downloadURL},
	})
}

func (h *DownloadHandler) respondBundleError(c *gin.Context, err error) {
	var tooLarge *relay.BundleTooLargeError
	if errors.As(err, &tooLarge) {
		h.respondError(c, http.StatusRequestEntityTooLarge, err.Error(), models.CodeValidationError)
		return
	}
	h.logger.Warn("Bundle build failed", zap.Error(err))
	h.respondError(c, http.StatusInternalServerError, err.Error(), models.CodeRemoteFetchError)
}

func (h *DownloadHandler) respondError(c *gin.Context, statusCode int, message, code string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
