package models

import "time"

// Plan ceilings per reset period.
const (
	QuotaBandwidthLimit       int64 = 25 * 1024 * 1024 * 1024 // 25 GiB
	QuotaStorageLimit         int64 = 25 * 1024 * 1024 * 1024 // 25 GiB
	QuotaTransformationsLimit int64 = 25000

	QuotaNearLimitPercent = 80.0
)

// ResourceUsage is one metered resource measured against its plan ceiling.
type ResourceUsage struct {
	Used    int64   `json:"used"`
	Limit   int64   `json:"limit"`
	Percent float64 `json:"percent"`
}

// QuotaSnapshot is the remote account usage at the moment a batch begins.
// Known is false when the usage query failed; in that case the usage fields
// are absent and both flags stay false.
type QuotaSnapshot struct {
	Known           bool           `json:"known"`
	Bandwidth       *ResourceUsage `json:"bandwidth,omitempty"`
	Storage         *ResourceUsage `json:"storage,omitempty"`
	Transformations *ResourceUsage `json:"transformations,omitempty"`
	NearLimit       bool           `json:"near_limit"`
	OverLimit       bool           `json:"over_limit"`
	NextReset       time.Time      `json:"next_reset,omitempty"`
}
