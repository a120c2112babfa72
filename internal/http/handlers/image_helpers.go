package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/batch"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func (h *ImageHandler) readUploadedFiles(c *gin.Context) ([]batch.File, error) {
	maxMemory := h.config.Upload.MaxFileSize * int64(h.config.Upload.MaxFilesPerBatch)
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	headers := c.Request.MultipartForm.File[imagesParamKey]
	if len(headers) == 0 {
		return nil, errors.New("no image files provided")
	}

	files := make([]batch.File, 0, len(headers))
	for _, header := range headers {
		file, err := h.readFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (h *ImageHandler) readFile(header *multipart.FileHeader) (batch.File, error) {
	f, err := header.Open()
	if err != nil {
		return batch.File{}, fmt.Errorf("failed to open %s: %v", header.Filename, err)
	}
	defer f.Close()

	// Read one byte past the limit so the validator sees oversized files
	// without the handler buffering them whole.
	data, err := io.ReadAll(io.LimitReader(f, h.config.Upload.MaxFileSize+1))
	if err != nil {
		return batch.File{}, fmt.Errorf("failed to read %s: %v", header.Filename, err)
	}

	return batch.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message, code string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// respondBatchError maps orchestrator errors to batch-scoped responses.
func (h *ImageHandler) respondBatchError(c *gin.Context, err error) {
	var tooMany *batch.TooManyFilesError
	var allFailed *batch.ProcessingFailedError

	switch {
	case errors.Is(err, batch.ErrNoFiles):
		h.respondError(c, http.StatusBadRequest, err.Error(), models.CodeValidationError)
	case errors.As(err, &tooMany):
		h.respondError(c, http.StatusBadRequest, err.Error(), models.CodeValidationError)
	case errors.As(err, &allFailed):
		h.respondError(c, http.StatusInternalServerError, err.Error(), models.CodeRemoteUploadError)
	default:
		h.logger.Error("Batch processing failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "unexpected processing failure", models.CodeInternalError)
	}
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" && status != "configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
