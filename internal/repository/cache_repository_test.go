package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
)

func TestCacheRepositoryGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	mock.ExpectGet("drafts:count:a").SetVal("12")
	mock.ExpectGet("drafts:count:b").RedisNil()
	mock.ExpectGet("drafts:count:c").SetErr(errors.New("connection reset"))

	var total int
	require.NoError(t, repo.Get(context.Background(), "drafts:count:a", &total))
	assert.Equal(t, 12, total)

	err := repo.Get(context.Background(), "drafts:count:b", &total)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	err = repo.Get(context.Background(), "drafts:count:c", &total)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositorySet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	mock.ExpectSet("drafts:count:a", []byte("5"), time.Minute).SetVal("OK")
	require.NoError(t, repo.Set(context.Background(), "drafts:count:a", 5, time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	mock.ExpectScan(0, "drafts:count:*", 100).SetVal([]string{"drafts:count:a", "drafts:count:b"}, 7)
	mock.ExpectDel("drafts:count:a", "drafts:count:b").SetVal(2)
	mock.ExpectScan(7, "drafts:count:*", 100).SetVal([]string{}, 0)

	require.NoError(t, repo.DeleteByPattern(context.Background(), "drafts:count:*"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var total int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &total), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "k*"))
}
