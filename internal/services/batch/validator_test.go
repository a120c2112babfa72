package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

const maxSize = int64(10 * 1024 * 1024)

func TestValidateFile_SizeBoundary(t *testing.T) {
	atLimit := ValidateFile(maxSize, "image/jpeg", maxSize, allowedTypes)
	assert.True(t, atLimit.Accepted)

	oneOver := ValidateFile(maxSize+1, "image/jpeg", maxSize, allowedTypes)
	assert.False(t, oneOver.Accepted)
	assert.Contains(t, oneOver.Reason, "exceeds maximum")
}

func TestValidateFile_TypeAllowList(t *testing.T) {
	for _, contentType := range allowedTypes {
		outcome := ValidateFile(100, contentType, maxSize, allowedTypes)
		assert.True(t, outcome.Accepted, "type %s should be accepted", contentType)
	}

	pdf := ValidateFile(100, "application/pdf", maxSize, allowedTypes)
	assert.False(t, pdf.Accepted)
	assert.Contains(t, pdf.Reason, "unsupported file type")

	bmp := ValidateFile(100, "image/bmp", maxSize, allowedTypes)
	assert.False(t, bmp.Accepted)
}

func TestValidateFile_PDFRejectedRegardlessOfSize(t *testing.T) {
	outcome := ValidateFile(1, "application/pdf", maxSize, allowedTypes)
	assert.False(t, outcome.Accepted)
}

func TestValidateFile_TypeNormalization(t *testing.T) {
	jpg := ValidateFile(100, "image/jpg", maxSize, allowedTypes)
	assert.True(t, jpg.Accepted)

	withParams := ValidateFile(100, "IMAGE/PNG; charset=binary", maxSize, allowedTypes)
	assert.True(t, withParams.Accepted)
}
