package quota

import (
	"context"
	"time"

	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/cloudinary"
	"go.uber.org/zap"
)

// UsageFetcher reports the account's remote consumption.
type UsageFetcher interface {
	Usage(ctx context.Context) (*cloudinary.UsageResult, error)
}

// Tracker classifies account usage against the plan ceilings. Usage is
// re-fetched on every call; snapshots are never cached across batches.
type Tracker struct {
	fetcher UsageFetcher
	logger  *zap.Logger
	now     func() time.Time
}

func NewTracker(fetcher UsageFetcher, logger *zap.Logger) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Check fetches current usage and returns a snapshot. A failed usage query
// yields an unknown snapshot with both flags false instead of an error:
// usage reporting is advisory, the hard gate is the orchestrator checking
// OverLimit.
func (t *Tracker) Check(ctx context.Context) *models.QuotaSnapshot {
	usage, err := t.fetcher.Usage(ctx)
	if err != nil {
		t.logger.Warn("Usage query failed, continuing with unknown quota", zap.Error(err))
		return &models.QuotaSnapshot{Known: false}
	}

	snapshot := &models.QuotaSnapshot{
		Known:           true,
		Bandwidth:       resourceUsage(usage.Bandwidth.Usage, models.QuotaBandwidthLimit),
		Storage:         resourceUsage(usage.Storage.Usage, models.QuotaStorageLimit),
		Transformations: resourceUsage(usage.Transformations.Usage, models.QuotaTransformationsLimit),
		NextReset:       nextReset(t.now()),
	}

	for _, r := range []*models.ResourceUsage{snapshot.Bandwidth, snapshot.Storage, snapshot.Transformations} {
		if r.Percent > models.QuotaNearLimitPercent {
			snapshot.NearLimit = true
		}
		if r.Percent >= 100 {
			snapshot.OverLimit = true
		}
	}

	return snapshot
}

func resourceUsage(used, limit int64) *models.ResourceUsage {
	return &models.ResourceUsage{
		Used:    used,
		Limit:   limit,
		Percent: float64(used) / float64(limit) * 100,
	}
}

// nextReset is the first day of the next calendar month in UTC.
func nextReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
