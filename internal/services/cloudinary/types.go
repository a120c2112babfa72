package cloudinary

import "errors"

// ErrQuotaExceeded marks upload failures caused by the account hitting its
// plan ceiling. The orchestrator stops dispatching once it sees this.
var ErrQuotaExceeded = errors.New("remote usage quota exceeded")

// UploadRequest is one file plus the derived variants to produce remotely.
type UploadRequest struct {
	Data     []byte
	FileName string
	PublicID string
	// Eager transformation strings, one per requested output size.
	Transformations []string
}

// EagerResult is one derived variant produced during an upload.
type EagerResult struct {
	Transformation string `json:"transformation"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Bytes          int64  `json:"bytes"`
	URL            string `json:"url"`
	SecureURL      string `json:"secure_url"`
}

// UploadResult is the remote service's answer to an upload call.
type UploadResult struct {
	PublicID  string        `json:"public_id"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Bytes     int64         `json:"bytes"`
	Format    string        `json:"format"`
	URL       string        `json:"url"`
	SecureURL string        `json:"secure_url"`
	Eager     []EagerResult `json:"eager"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ResourceUsage is the consumed amount of one metered resource.
type ResourceUsage struct {
	Usage int64 `json:"usage"`
}

// UsageResult is the account usage report for the current reset period.
type UsageResult struct {
	Plan            string        `json:"plan"`
	Bandwidth       ResourceUsage `json:"bandwidth"`
	Storage         ResourceUsage `json:"storage"`
	Transformations ResourceUsage `json:"transformations"`
	Requests        int64         `json:"requests"`
}
