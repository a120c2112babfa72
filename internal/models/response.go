package models

import "time"

// Machine-stable error codes carried by every error response.
const (
	CodeValidationError    = "validation_error"
	CodeRateLimited        = "rate_limited"
	CodeConfigurationError = "configuration_error"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeRemoteUploadError  = "remote_upload_error"
	CodeRemoteFetchError   = "remote_fetch_error"
	CodeNotFound           = "not_found"
	CodeInternalError      = "internal_error"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
