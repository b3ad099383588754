package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wiki-drafts/internal/models"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
)

type draftCollectionStore interface {
	Count(ctx context.Context, filter models.DraftFilter) (int, error)
	List(ctx context.Context, filter models.DraftFilter) ([]models.DraftRow, error)
}

// ApprovalSummary is the drafts-to-approve workbench content.
type ApprovalSummary struct {
	Count        int
	LifeSpanDays int
	Drafts       []*models.Draft
}

// DraftCollectionService answers count and list queries over drafts.
type DraftCollectionService struct {
	store        draftCollectionStore
	cache        *CacheService
	cacheTTL     time.Duration
	lifeSpanDays int
	logger       *zap.Logger
}

// NewDraftCollectionService constructs the service. cache may be nil.
func NewDraftCollectionService(store draftCollectionStore, cache *CacheService, cacheTTL time.Duration, lifeSpanDays int, logger *zap.Logger) *DraftCollectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftCollectionService{store: store, cache: cache, cacheTTL: cacheTTL, lifeSpanDays: lifeSpanDays, logger: logger}
}

// Count returns the number of drafts matching filter.
func (s *DraftCollectionService) Count(ctx context.Context, filter models.DraftFilter) (int, error) {
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count drafts")
	}
	return total, nil
}

// CountCached is Count backed by the count cache.
func (s *DraftCollectionService) CountCached(ctx context.Context, filter models.DraftFilter) (int, error) {
	key := countCacheKey(filter)
	var total int
	if s.cache.Get(ctx, key, &total) {
		return total, nil
	}
	total, err := s.Count(ctx, filter)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, key, total, s.cacheTTL)
	return total, nil
}

// List returns the drafts matching filter, most recently saved first.
func (s *DraftCollectionService) List(ctx context.Context, filter models.DraftFilter) ([]*models.Draft, error) {
	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list drafts")
	}
	drafts := make([]*models.Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, models.NewDraftFromRow(row))
	}
	return drafts, nil
}

// ApprovalQueue lists proposed drafts of every user for a principal allowed to approve them.
func (s *DraftCollectionService) ApprovalQueue(ctx context.Context, principal *models.Principal, limit, offset int) (*ApprovalSummary, error) {
	if !principal.Can(models.CapabilityApproveDrafts) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "approving drafts is not permitted")
	}

	proposed := models.DraftStatusProposed
	filter := models.DraftFilter{AllUsers: true, Status: &proposed, Limit: limit, Offset: offset}
	total, err := s.CountCached(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := &ApprovalSummary{Count: total, LifeSpanDays: s.lifeSpanDays, Drafts: []*models.Draft{}}
	if total == 0 {
		return summary, nil
	}
	drafts, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary.Drafts = drafts
	return summary, nil
}

// countCacheKey hashes the selecting part of filter. Paging does not change a count.
func countCacheKey(filter models.DraftFilter) string {
	status := "*"
	if filter.Status != nil {
		status = "=" + string(*filter.Status)
	}
	namespace := "*"
	if filter.Namespace != nil {
		namespace = fmt.Sprint(*filter.Namespace)
	}
	user := fmt.Sprint(filter.UserID)
	if filter.AllUsers {
		user = "*"
	}
	sum := sha256.Sum256([]byte(user + "|" + status + "|" + namespace + "|" + filter.Title))
	return "drafts:count:" + hex.EncodeToString(sum[:8])
}
