package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/tutormatch/internal/adapters/repository"
	"github.com/okian/tutormatch/internal/domain/model"
)

// countingStore records how often the backing store is read.
type countingStore struct {
	repository.SuggestionStore
	lists   int
	listErr error
}

func (c *countingStore) List(ctx context.Context, ownerID string) ([]model.MatchSuggestion, error) {
	c.lists++
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.SuggestionStore.List(ctx, ownerID)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedSuggestions_ReadThrough(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	backing := &countingStore{SuggestionStore: repository.NewMemoryStore()}
	require.NoError(t, backing.Save(ctx, "me", []model.MatchSuggestion{{TargetID: "a", Score: 70}}))

	cache := repository.NewCachedSuggestions(backing, rdb, repository.WithCacheTTL(time.Minute), repository.WithKeyPrefix("t:"))

	first, err := cache.List(ctx, "me")
	require.NoError(t, err)
	second, err := cache.List(ctx, "me")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backing.lists)
	assert.True(t, mr.Exists("t:me"))
	assert.Equal(t, time.Minute, mr.TTL("t:me"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.List(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.lists)
}

func TestCachedSuggestions_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	backing := &countingStore{SuggestionStore: repository.NewMemoryStore()}
	cache := repository.NewCachedSuggestions(backing, rdb)

	_, err := cache.List(ctx, "me")
	require.NoError(t, err)
	require.NoError(t, cache.Save(ctx, "me", []model.MatchSuggestion{{TargetID: "b", Score: 20}}))
	assert.False(t, mr.Exists("tutormatch:suggestions:me"))

	got, err := cache.List(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].TargetID)
}

func TestCachedSuggestions_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	backing := &countingStore{SuggestionStore: repository.NewMemoryStore()}
	require.NoError(t, backing.Save(ctx, "me", []model.MatchSuggestion{{TargetID: "a"}}))
	cache := repository.NewCachedSuggestions(backing, rdb)

	mr.Close()

	got, err := cache.List(ctx, "me")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.NoError(t, cache.Save(ctx, "me", nil))
}

func TestCachedSuggestions_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	backing := &countingStore{SuggestionStore: repository.NewMemoryStore()}
	cache := repository.NewCachedSuggestions(backing, rdb)
	require.NoError(t, mr.Set("tutormatch:suggestions:me", "{not json"))

	got, err := cache.List(ctx, "me")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, backing.lists)
}

func TestCachedSuggestions_BackingErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupRedis(t)
	backing := &countingStore{SuggestionStore: repository.NewMemoryStore(), listErr: repository.ErrUnavailable}
	cache := repository.NewCachedSuggestions(backing, rdb)

	_, err := cache.List(ctx, "me")
	assert.True(t, errors.Is(err, repository.ErrUnavailable))
}
