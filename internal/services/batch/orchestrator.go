package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/cloudinary"
	"go.uber.org/zap"
)

// ErrNoFiles is returned when a batch arrives without any files.
var ErrNoFiles = errors.New("no image files provided")

// TooManyFilesError rejects a batch larger than the configured ceiling
// before any file is processed.
type TooManyFilesError struct {
	Count int
	Max   int
}

func (e *TooManyFilesError) Error() string {
	return fmt.Sprintf("too many files: got %d, maximum is %d per batch", e.Count, e.Max)
}

// ProcessingFailedError is returned when every upload issued to the remote
// service failed. It cites the first failure so callers do not have to
// inspect an empty success list.
type ProcessingFailedError struct {
	Reason string
}

func (e *ProcessingFailedError) Error() string {
	return "processing failed: " + e.Reason
}

// Uploader issues one upload-with-transform call to the remote service.
type Uploader interface {
	Upload(ctx context.Context, req cloudinary.UploadRequest) (*cloudinary.UploadResult, error)
}

// QuotaChecker returns a fresh usage snapshot for the batch about to start.
type QuotaChecker interface {
	Check(ctx context.Context) *models.QuotaSnapshot
}

// Notifier is told about every completed batch. It replaces the ambient
// completion callback of earlier revisions with an explicit dependency.
type Notifier interface {
	BatchCompleted(ctx context.Context, result *models.BatchResult)
}

// File is one submitted image: content plus the client-declared metadata
// the validator runs against.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Orchestrator validates a batch, gates it on the account quota and fans the
// surviving files out to the remote service concurrently.
type Orchestrator struct {
	uploader Uploader
	quota    QuotaChecker
	notifier Notifier
	logger   *zap.Logger
	cfg      config.UploadConfig
}

func NewOrchestrator(
	uploader Uploader,
	quota QuotaChecker,
	notifier Notifier,
	logger *zap.Logger,
	cfg config.UploadConfig,
) *Orchestrator {
	return &Orchestrator{
		uploader: uploader,
		quota:    quota,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// outcome keeps the settled result for one file slot. Exactly one of the
// two fields is set once the batch finishes.
type outcome struct {
	success *models.OptimizedImage
	failure *models.UploadFailure
}

// Process runs one batch end to end and aggregates per-file outcomes. Files
// rejected by validation are reported as failures alongside upload errors;
// one file's failure never cancels its siblings.
func (o *Orchestrator) Process(ctx context.Context, files []File, sizes []models.OutputSize) (*models.BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > o.cfg.MaxFilesPerBatch {
		return nil, &TooManyFilesError{Count: len(files), Max: o.cfg.MaxFilesPerBatch}
	}
	if len(sizes) == 0 {
		sizes = models.DefaultOutputSizes()
	}

	snapshot := o.quota.Check(ctx)
	batchID := newBatchID()

	o.logger.Info("Processing batch",
		zap.String("batch_id", batchID),
		zap.Int("files", len(files)),
		zap.Int("sizes", len(sizes)),
		zap.Bool("over_limit", snapshot.OverLimit),
	)

	transformations := make([]string, len(sizes))
	for i, size := range sizes {
		transformations[i] = cloudinary.PadTransformation(size.Width, size.Height, o.cfg.Quality)
	}

	outcomes := make([]outcome, len(files))

	// quotaTripped is set when the pre-check is over limit or a remote call
	// comes back quota-exceeded; uploads not yet issued then fail locally.
	var quotaTripped atomic.Bool
	quotaTripped.Store(snapshot.OverLimit)

	var wg sync.WaitGroup
	remoteIssued := false
	for i := range files {
		verdict := ValidateFile(int64(len(files[i].Data)), files[i].ContentType, o.cfg.MaxFileSize, o.cfg.AllowedTypes)
		if !verdict.Accepted {
			outcomes[i].failure = &models.UploadFailure{
				FileName: files[i].Name,
				Index:    i,
				Error:    verdict.Reason,
			}
			continue
		}

		if !quotaTripped.Load() {
			remoteIssued = true
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = o.uploadOne(ctx, batchID, i, files[i], sizes, transformations, &quotaTripped)
		}(i)
	}
	wg.Wait()

	result := o.aggregate(batchID, snapshot, outcomes)

	if o.notifier != nil {
		o.notifier.BatchCompleted(ctx, result)
	}

	if remoteIssued && result.Processed == 0 {
		return nil, &ProcessingFailedError{Reason: result.Failures[0].Error}
	}
	return result, nil
}

func (o *Orchestrator) uploadOne(
	ctx context.Context,
	batchID string,
	index int,
	file File,
	sizes []models.OutputSize,
	transformations []string,
	quotaTripped *atomic.Bool,
) outcome {
	if quotaTripped.Load() {
		return outcome{failure: &models.UploadFailure{
			FileName:      file.Name,
			Index:         index,
			Error:         "account usage quota exceeded, upload skipped",
			QuotaExceeded: true,
		}}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, o.cfg.UploadTimeout)
	defer cancel()

	result, err := o.uploader.Upload(uploadCtx, cloudinary.UploadRequest{
		Data:            file.Data,
		FileName:        file.Name,
		PublicID:        fmt.Sprintf("%s/%02d_optimized", batchID, index),
		Transformations: transformations,
	})
	if err != nil {
		isQuota := errors.Is(err, cloudinary.ErrQuotaExceeded)
		if isQuota {
			quotaTripped.Store(true)
		}
		o.logger.Warn("Upload failed",
			zap.String("batch_id", batchID),
			zap.String("file", file.Name),
			zap.Error(err),
		)
		return outcome{failure: &models.UploadFailure{
			FileName:      file.Name,
			Index:         index,
			Error:         err.Error(),
			QuotaExceeded: isQuota,
		}}
	}

	if len(result.Eager) < len(sizes) {
		return outcome{failure: &models.UploadFailure{
			FileName: file.Name,
			Index:    index,
			Error:    fmt.Sprintf("remote service returned %d variants, expected %d", len(result.Eager), len(sizes)),
		}}
	}

	outputs := make([]models.ImageOutput, len(sizes))
	for j, size := range sizes {
		outputs[j] = models.ImageOutput{
			Size:   size.Name,
			URL:    result.Eager[j].SecureURL,
			Bytes:  result.Eager[j].Bytes,
			Width:  result.Eager[j].Width,
			Height: result.Eager[j].Height,
		}
	}

	return outcome{success: &models.OptimizedImage{
		FileName: file.Name,
		Index:    index,
		Outputs:  outputs,
	}}
}

// aggregate merges per-file outcomes into one BatchResult in slot order.
func (o *Orchestrator) aggregate(batchID string, snapshot *models.QuotaSnapshot, outcomes []outcome) *models.BatchResult {
	result := &models.BatchResult{
		BatchID:     batchID,
		TotalImages: len(outcomes),
		Status:      models.StatusCompleted,
		ProcessedAt: time.Now().UTC(),
		Images:      make([]models.OptimizedImage, 0, len(outcomes)),
		Quota:       snapshot,
	}

	for i := range outcomes {
		switch {
		case outcomes[i].success != nil:
			result.Images = append(result.Images, *outcomes[i].success)
		case outcomes[i].failure != nil:
			result.Failures = append(result.Failures, *outcomes[i].failure)
		}
	}

	result.Processed = len(result.Images)
	result.Failed = len(result.Failures)

	if result.Processed > 0 {
		result.Message = fmt.Sprintf("%d images optimized", result.Processed)
	} else {
		result.Message = "processing failed"
	}

	return result
}

// newBatchID builds a time-based identifier with a short random suffix.
func newBatchID() string {
	return fmt.Sprintf("batch_%s_%s", time.Now().UTC().Format("20060102T150405"), uuid.New().String()[:8])
}
