package repository

import (
	"time"

	"github.com/okian/tutormatch/pkg/logger"
)

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds every statement issued by the store.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// CacheOption configures a CachedSuggestions.
type CacheOption func(*CachedSuggestions)

// WithCacheTTL sets how long a cached suggestion list lives.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSuggestions) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces cache keys.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedSuggestions) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger used to report bypassed cache failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedSuggestions) {
		if l != nil {
			c.log = l
		}
	}
}
