package relay

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// BuildBundle fetches each result URL and packs the successful ones into a
// single ZIP archive with sequentially named entries. A URL that errors or
// times out is skipped, not fatal; the returned count is the number of
// entries actually archived.
func (r *Relay) BuildBundle(ctx context.Context, urls []string) ([]byte, int, error) {
	if len(urls) == 0 {
		return nil, 0, errors.New("no urls provided")
	}
	if len(urls) > r.maxBundleFiles {
		return nil, 0, &BundleTooLargeError{Count: len(urls), Max: r.maxBundleFiles}
	}

	buffer := &bytes.Buffer{}
	archive := zip.NewWriter(buffer)

	added := 0
	for i, rawURL := range urls {
		img, err := r.FetchImage(ctx, rawURL)
		if err != nil {
			r.logger.Warn("Skipping archive entry",
				zap.String("url", rawURL),
				zap.Error(err),
			)
			continue
		}

		entry, err := archive.Create(fmt.Sprintf("image_%02d%s", i+1, extensionFor(img.ContentType)))
		if err != nil {
			r.logger.Warn("Failed to create archive entry", zap.String("url", rawURL), zap.Error(err))
			continue
		}
		if _, err := entry.Write(img.Data); err != nil {
			return nil, 0, fmt.Errorf("failed to write archive entry: %w", err)
		}
		added++
	}

	if err := archive.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if added == 0 {
		return nil, 0, errors.New("failed to fetch any of the requested files")
	}

	return buffer.Bytes(), added, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.Split(contentType, ";")[0]) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
