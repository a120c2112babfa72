package archive

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
)

// Store persists batch archives to Supabase Storage so a bundle can be
// re-downloaded through a plain URL instead of rebuilding the ZIP.
type Store struct {
	sbClient   *storage_go.Client
	bucket     string
	configured bool
}

func NewStore(cfg config.SupabaseConfig) *Store {
	return &Store{
		sbClient:   storage_go.NewClient(cfg.URL+"/storage/v1", cfg.KEY, nil),
		bucket:     cfg.BUCKET,
		configured: cfg.URL != "" && cfg.KEY != "",
	}
}

func (s *Store) Configured() bool {
	return s.configured
}

// SaveArchive uploads the ZIP for a batch and returns its shareable URL.
func (s *Store) SaveArchive(ctx context.Context, batchID string, data []byte) (string, error) {
	key := fmt.Sprintf("archives/%s.zip", batchID)

	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}

// HealthCheck probes the bucket.
func (s *Store) HealthCheck(ctx context.Context) string {
	if !s.configured {
		return "not configured"
	}
	if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
