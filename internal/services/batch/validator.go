package batch

import (
	"fmt"
	"strings"
)

// ValidationOutcome is the pre-upload verdict for a single file. It is
// computed before any network call and never changes afterwards.
type ValidationOutcome struct {
	Accepted bool
	Reason   string
}

// ValidateFile checks the declared size and MIME type against the configured
// limits. Pure function: no I/O, no side effects.
func ValidateFile(size int64, contentType string, maxSize int64, allowedTypes []string) ValidationOutcome {
	if size > maxSize {
		return ValidationOutcome{
			Reason: fmt.Sprintf("file size %d exceeds maximum allowed size %d", size, maxSize),
		}
	}

	normalized := normalizeContentType(contentType)
	for _, allowed := range allowedTypes {
		if normalized == allowed {
			return ValidationOutcome{Accepted: true}
		}
	}

	return ValidationOutcome{
		Reason: fmt.Sprintf("unsupported file type: %s", contentType),
	}
}

func normalizeContentType(contentType string) string {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	if normalized == "image/jpg" {
		normalized = "image/jpeg"
	}
	return normalized
}
