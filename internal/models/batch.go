package models

import "time"

const StatusCompleted = "completed"

// ImageOutput is one optimized variant of an uploaded image.
type ImageOutput struct {
	Size   string `json:"size"`
	URL    string `json:"url"`
	Bytes  int64  `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// OptimizedImage is the successful outcome for a single uploaded file.
type OptimizedImage struct {
	FileName string        `json:"file_name"`
	Index    int           `json:"index"`
	Outputs  []ImageOutput `json:"outputs"`
}

// UploadFailure is the failed outcome for a single uploaded file. Validation
// rejections and remote upload errors both surface here.
type UploadFailure struct {
	FileName      string `json:"file_name"`
	Index         int    `json:"index"`
	Error         string `json:"error"`
	QuotaExceeded bool   `json:"quota_exceeded,omitempty"`
}

type BatchResult struct {
	BatchID     string           `json:"batch_id"`
	TotalImages int              `json:"total_images"`
	Processed   int              `json:"processed"`
	Failed      int              `json:"failed"`
	Status      string           `json:"status"`
	ProcessedAt time.Time        `json:"processed_at"`
	Images      []OptimizedImage `json:"images"`
	Failures    []UploadFailure  `json:"failures,omitempty"`
	Quota       *QuotaSnapshot   `json:"quota,omitempty"`
	Message     string           `json:"message"`
}
