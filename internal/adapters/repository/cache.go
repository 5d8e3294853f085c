package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/pkg/logger"
	"github.com/okian/tutormatch/pkg/metrics"
)

const (
	defaultCacheTTL    = 5 * time.Minute
	defaultCachePrefix = "tutormatch:suggestions:"
)

// CachedSuggestions is a read-through Redis cache in front of a
// SuggestionStore. Saves go to the backing store first and then drop the
// cached list. Redis failures are logged and bypassed; only backing store
// failures reach the caller.
type CachedSuggestions struct {
	next   SuggestionStore
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

// NewRedisClient builds a client for addr with the pool settings used by the
// service.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewCachedSuggestions wraps next with a Redis cache.
func NewCachedSuggestions(next SuggestionStore, rdb redis.Cmdable, opts ...CacheOption) *CachedSuggestions {
	c := &CachedSuggestions{
		next:   next,
		rdb:    rdb,
		ttl:    defaultCacheTTL,
		prefix: defaultCachePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("suggestion_cache")
	}
	return c
}

func (c *CachedSuggestions) key(ownerID string) string {
	return c.prefix + ownerID
}

func (c *CachedSuggestions) List(ctx context.Context, ownerID string) ([]model.MatchSuggestion, error) {
	raw, err := c.rdb.Get(ctx, c.key(ownerID)).Bytes()
	switch {
	case err == nil:
		var cached []model.MatchSuggestion
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			metrics.RecordCacheRequest(metrics.CacheHit)
			return cached, nil
		}
		metrics.RecordCacheRequest(metrics.CacheError)
		c.log.Warn(ctx, "discarding corrupt cache entry", logger.String("owner_id", ownerID))
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheRequest(metrics.CacheMiss)
	default:
		metrics.RecordCacheRequest(metrics.CacheError)
		c.log.Warn(ctx, "suggestion cache read failed", logger.String("owner_id", ownerID), logger.Error(err))
		return c.next.List(ctx, ownerID)
	}

	list, err := c.next.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(list); jerr == nil {
		if serr := c.rdb.Set(ctx, c.key(ownerID), payload, c.ttl).Err(); serr != nil {
			c.log.Warn(ctx, "suggestion cache write failed", logger.String("owner_id", ownerID), logger.Error(serr))
		}
	}
	return list, nil
}

func (c *CachedSuggestions) Save(ctx context.Context, ownerID string, suggestions []model.MatchSuggestion) error {
	if err := c.next.Save(ctx, ownerID, suggestions); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, c.key(ownerID)).Err(); err != nil {
		c.log.Warn(ctx, "suggestion cache invalidation failed", logger.String("owner_id", ownerID), logger.Error(err))
	}
	return nil
}
