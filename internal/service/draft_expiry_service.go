package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/pkg/jobs"
)

// JobTypeExpireDrafts identifies the periodic expiry sweep on the job queue.
const JobTypeExpireDrafts = "drafts.expire"

type draftExpiryStore interface {
	DeleteSavedBefore(ctx context.Context, cutoff time.Time, keep []models.DraftStatus) (int64, error)
}

// DraftExpiryService removes drafts that outlived the configured lifespan.
// Drafts waiting for approval are kept until a reviewer acts on them.
type DraftExpiryService struct {
	store    draftExpiryStore
	lifeSpan time.Duration
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewDraftExpiryService constructs the service. A zero lifespan disables sweeping.
// Cached draft counts are dropped whenever a sweep removes rows.
func NewDraftExpiryService(store draftExpiryStore, lifeSpan time.Duration, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DraftExpiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftExpiryService{store: store, lifeSpan: lifeSpan, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Sweep deletes drafts last saved before now minus the lifespan and returns how many were removed.
func (s *DraftExpiryService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if s.lifeSpan <= 0 {
		return 0, nil
	}
	cutoff := models.NormalizeTimestamp(now.Add(-s.lifeSpan))
	removed, err := s.store.DeleteSavedBefore(ctx, cutoff, []models.DraftStatus{models.DraftStatusProposed})
	if err != nil {
		return 0, fmt.Errorf("sweep expired drafts: %w", err)
	}
	s.metrics.AddExpiredDrafts(removed)
	if removed > 0 {
		s.cache.Invalidate(ctx, draftCountPattern)
		s.logger.Info("expired drafts removed", zap.Int64("count", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}

// HandleJob is the jobs.Handler running Sweep for expiry jobs.
func (s *DraftExpiryService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeExpireDrafts {
		return fmt.Errorf("unsupported job type %q", job.Type)
	}
	_, err := s.Sweep(ctx, s.now())
	return err
}
