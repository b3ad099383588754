package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/pkg/jobs"
)

type expiryStoreStub struct {
	mu      sync.Mutex
	removed int64
	err     error
	cutoffs []time.Time
	keep    []models.DraftStatus
}

func (s *expiryStoreStub) DeleteSavedBefore(_ context.Context, cutoff time.Time, keep []models.DraftStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	s.keep = keep
	return s.removed, s.err
}

func (s *expiryStoreStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cutoffs)
}

func TestDraftExpiryServiceSweep(t *testing.T) {
	store := &expiryStoreStub{removed: 3}
	metrics := NewMetricsService()
	svc := NewDraftExpiryService(store, 30*24*time.Hour, nil, metrics, nil)

	now := time.Date(2024, 4, 30, 12, 0, 0, 500, time.UTC)
	removed, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), store.cutoffs[0])
	assert.Equal(t, []models.DraftStatus{models.DraftStatusProposed}, store.keep)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.expiredDrafts))
}

func TestDraftExpiryServiceSweepDropsCachedCounts(t *testing.T) {
	repo := newCacheRepoStub()
	repo.values["drafts:count:abc"] = 4
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	store := &expiryStoreStub{}
	svc := NewDraftExpiryService(store, time.Hour, cache, nil, nil)
	_, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, repo.invalidated)

	store.removed = 2
	_, err = svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{draftCountPattern}, repo.invalidated)
	assert.Empty(t, repo.values)
}

func TestDraftExpiryServiceDisabled(t *testing.T) {
	store := &expiryStoreStub{removed: 3}
	svc := NewDraftExpiryService(store, 0, nil, nil, nil)

	removed, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, store.cutoffs)
}

func TestDraftExpiryServiceSweepError(t *testing.T) {
	store := &expiryStoreStub{err: errors.New("db down")}
	svc := NewDraftExpiryService(store, time.Hour, nil, nil, nil)

	_, err := svc.Sweep(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep expired drafts")
}

func TestDraftExpiryServiceHandleJob(t *testing.T) {
	store := &expiryStoreStub{}
	svc := NewDraftExpiryService(store, time.Hour, nil, nil, nil)
	fixed := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.HandleJob(context.Background(), jobs.Job{Type: JobTypeExpireDrafts}))
	assert.Equal(t, fixed.Add(-time.Hour), store.cutoffs[0])

	assert.Error(t, svc.HandleJob(context.Background(), jobs.Job{Type: "other"}))
}

func TestDraftExpiryServiceOnQueue(t *testing.T) {
	store := &expiryStoreStub{}
	svc := NewDraftExpiryService(store, time.Hour, nil, nil, nil)

	queue := jobs.NewQueue("drafts-expiry", svc.HandleJob, jobs.QueueConfig{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(jobs.Job{Type: JobTypeExpireDrafts}))
	assert.Eventually(t, func() bool { return store.calls() == 1 }, time.Second, 10*time.Millisecond)
}
