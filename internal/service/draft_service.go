package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/internal/repository"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
)

// draftCountPattern matches every cached draft count.
const draftCountPattern = "drafts:count:*"

type draftStore interface {
	GetByID(ctx context.Context, id int64) (*models.DraftRow, error)
	Save(ctx context.Context, row models.DraftRow, exists bool) (repository.SaveResult, error)
	DeleteOwned(ctx context.Context, id, owner int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.DraftStatus) (bool, error)
	UpdateOwnedStatus(ctx context.Context, id, owner int64, status models.DraftStatus) (bool, error)
}

// DraftService runs the draft record lifecycle on behalf of an explicit principal.
type DraftService struct {
	store   draftStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// DraftServiceOption configures the service.
type DraftServiceOption func(*DraftService)

// WithDraftCache sets the cache invalidated after every mutation.
func WithDraftCache(cache *CacheService) DraftServiceOption {
	return func(s *DraftService) {
		s.cache = cache
	}
}

// WithDraftMetrics sets the outcome recorder.
func WithDraftMetrics(metrics *MetricsService) DraftServiceOption {
	return func(s *DraftService) {
		s.metrics = metrics
	}
}

// NewDraftService constructs the service.
func NewDraftService(store draftStore, logger *zap.Logger, opts ...DraftServiceOption) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DraftService{store: store, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewFromID allocates a draft for id and loads it when autoload is set.
func (s *DraftService) NewFromID(ctx context.Context, id int64, autoload bool) (*models.Draft, error) {
	draft := models.NewDraft(id)
	if autoload {
		if err := s.Load(ctx, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// Load fills draft from storage by id. Any principal may read any draft whose id it knows.
// A draft with no id, or whose row is gone, is left non-existent.
func (s *DraftService) Load(ctx context.Context, draft *models.Draft) error {
	if draft == nil || draft.ID == 0 {
		return nil
	}
	row, err := s.store.GetByID(ctx, draft.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to load draft")
	}
	if row == nil {
		return nil
	}
	draft.Hydrate(*row)
	return nil
}

// Save stores draft as owned by principal. Existing drafts are updated only for their owner; new drafts
// are skipped when the owner already has one with the same page, token and status.
func (s *DraftService) Save(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error) {
	if draft == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "draft is required")
	}
	if !identified(principal) {
		return s.finish(ctx, "save", draft, models.DraftDenied), nil
	}

	row := draft.Row(principal.UserID)
	result, err := s.store.Save(ctx, row, draft.Exists())
	if err != nil {
		s.logger.Error("failed to save draft", zap.Int64("draft_id", draft.ID), zap.Int64("user_id", principal.UserID), zap.Error(err))
		return "", appErrors.Internal(err, "failed to save draft")
	}
	switch result.Outcome {
	case models.DraftInserted:
		draft.UserID = principal.UserID
		draft.MarkStored(result.ID)
	case models.DraftUpdated:
		draft.UserID = principal.UserID
	}
	return s.finish(ctx, "save", draft, result.Outcome), nil
}

// Discard deletes draft if principal owns it. The draft is non-existent afterwards either way.
func (s *DraftService) Discard(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error) {
	if draft == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "draft is required")
	}
	if !identified(principal) {
		return s.finish(ctx, "discard", draft, models.DraftDenied), nil
	}

	removed, err := s.store.DeleteOwned(ctx, draft.ID, principal.UserID)
	if err != nil {
		s.logger.Error("failed to discard draft", zap.Int64("draft_id", draft.ID), zap.Error(err))
		return "", appErrors.Internal(err, "failed to discard draft")
	}
	draft.MarkDiscarded()
	if !removed {
		return s.finish(ctx, "discard", draft, models.DraftNotFound), nil
	}
	return s.finish(ctx, "discard", draft, models.DraftDiscarded), nil
}

// Refuse marks any user's draft as refused. It requires the approve capability and touches nothing else.
func (s *DraftService) Refuse(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error) {
	if draft == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "draft is required")
	}
	if !principal.Can(models.CapabilityApproveDrafts) {
		return s.finish(ctx, "refuse", draft, models.DraftDenied), nil
	}

	changed, err := s.store.UpdateStatus(ctx, draft.ID, models.DraftStatusRefused)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateDraft) {
			// the owner already has a refused draft for this page and token
			return s.finish(ctx, "refuse", draft, models.DraftDeduped), nil
		}
		s.logger.Error("failed to refuse draft", zap.Int64("draft_id", draft.ID), zap.Error(err))
		return "", appErrors.Internal(err, "failed to refuse draft")
	}
	if !changed {
		return s.finish(ctx, "refuse", draft, models.DraftNotFound), nil
	}
	draft.Status = models.DraftStatusRefused
	return s.finish(ctx, "refuse", draft, models.DraftRefused), nil
}

// Propose submits principal's own draft for approval.
func (s *DraftService) Propose(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error) {
	if draft == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "draft is required")
	}
	if !identified(principal) {
		return s.finish(ctx, "propose", draft, models.DraftDenied), nil
	}

	changed, err := s.store.UpdateOwnedStatus(ctx, draft.ID, principal.UserID, models.DraftStatusProposed)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateDraft) {
			return s.finish(ctx, "propose", draft, models.DraftDeduped), nil
		}
		s.logger.Error("failed to propose draft", zap.Int64("draft_id", draft.ID), zap.Error(err))
		return "", appErrors.Internal(err, "failed to propose draft")
	}
	if !changed {
		return s.finish(ctx, "propose", draft, models.DraftDenied), nil
	}
	draft.Status = models.DraftStatusProposed
	return s.finish(ctx, "propose", draft, models.DraftProposed), nil
}

func (s *DraftService) finish(ctx context.Context, op string, draft *models.Draft, outcome models.DraftOutcome) models.DraftOutcome {
	s.metrics.RecordDraftOutcome(op, outcome)
	if outcome.Mutated() {
		s.cache.Invalidate(ctx, draftCountPattern)
	}
	s.logger.Debug("draft operation", zap.String("op", op), zap.Int64("draft_id", draft.ID), zap.String("outcome", string(outcome)))
	return outcome
}

func identified(principal *models.Principal) bool {
	return principal != nil && principal.UserID > 0
}
