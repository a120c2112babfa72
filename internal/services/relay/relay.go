package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"go.uber.org/zap"
)

// Cap on a single relayed file; optimized variants are far smaller.
const defaultMaxFetchBytes = 50 * 1024 * 1024

// ErrForeignHost rejects relay requests for URLs outside the remote
// service's delivery domain, so the relay cannot be used as an open proxy.
var ErrForeignHost = errors.New("url is not hosted on the expected remote domain")

// BundleTooLargeError rejects a bundle request before any fetch occurs.
type BundleTooLargeError struct {
	Count int
	Max   int
}

func (e *BundleTooLargeError) Error() string {
	return fmt.Sprintf("too many files for one archive: got %d, maximum is %d", e.Count, e.Max)
}

// FetchedImage is one previously produced result re-fetched for the client.
type FetchedImage struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Relay re-fetches previously returned result URLs and streams them back,
// individually or bundled into one archive.
type Relay struct {
	httpClient     *http.Client
	allowedHost    string
	maxBundleFiles int
	maxFetchBytes  int64
	logger         *zap.Logger
}

func NewRelay(cfg config.UploadConfig, allowedHost string, logger *zap.Logger) *Relay {
	return &Relay{
		httpClient:     &http.Client{Timeout: cfg.FetchTimeout},
		allowedHost:    allowedHost,
		maxBundleFiles: cfg.MaxBundleFiles,
		maxFetchBytes:  defaultMaxFetchBytes,
		logger:         logger,
	}
}

// FetchImage fetches one result URL after validating it belongs to the
// expected remote host.
func (r *Relay) FetchImage(ctx context.Context, rawURL string) (*FetchedImage, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid url scheme %q", parsed.Scheme)
	}
	if !strings.EqualFold(parsed.Host, r.allowedHost) {
		return nil, ErrForeignHost
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	// Read one byte past the cap so an oversized body is detected instead
	// of being truncated and relayed as a success.
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > r.maxFetchBytes {
		return nil, fmt.Errorf("image exceeds the %d byte relay limit", r.maxFetchBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &FetchedImage{
		Data:        data,
		ContentType: contentType,
		FileName:    suggestedFileName(parsed.Path),
	}, nil
}

func suggestedFileName(urlPath string) string {
	name := path.Base(urlPath)
	if name == "" || name == "." || name == "/" {
		return "image.jpg"
	}
	return name
}
