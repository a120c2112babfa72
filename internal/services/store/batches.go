package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
)

// ErrNotFound is returned when no batch exists under the requested id.
var ErrNotFound = errors.New("batch not found")

const batchKeyPrefix = "batch:"

// BatchStore keeps finished batch results in Redis with a TTL so clients
// can re-read a batch and request its archive after the upload response.
type BatchStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewBatchStore(cfg config.RedisConfig) *BatchStore {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &BatchStore{
		redisClient: redisClient,
		ttl:         24 * time.Hour,
	}
}

func (s *BatchStore) Save(ctx context.Context, result *models.BatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal batch result: %w", err)
	}
	return s.redisClient.Set(ctx, batchKeyPrefix+result.BatchID, data, s.ttl).Err()
}

func (s *BatchStore) Get(ctx context.Context, batchID string) (*models.BatchResult, error) {
	data, err := s.redisClient.Get(ctx, batchKeyPrefix+batchID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load batch result: %w", err)
	}

	var result models.BatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch result: %w", err)
	}
	return &result, nil
}

func (s *BatchStore) Ping(ctx context.Context) error {
	return s.redisClient.Ping(ctx).Err()
}

func (s *BatchStore) Close() error {
	return s.redisClient.Close()
}
