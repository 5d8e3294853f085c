// Package config defines service configuration and how it is loaded.
//
// Values are layered: defaults from New, an optional YAML file named by
// TUTORMATCH_CONFIG, then TUTORMATCH_* environment variables. Nested keys use
// a double underscore in env names, e.g. TUTORMATCH_BONUS__TEACH=25.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/tutormatch/internal/domain/matching"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// QueueSize bounds the in-memory recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the recompute request dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankLimit caps GET /rank/{id}?limit.
	MaxRankLimit int `koanf:"max_rank_limit"`

	// SuggestionLimit is how many suggestions a recompute persists.
	SuggestionLimit int `koanf:"suggestion_limit"`

	// MaxSkills bounds each skill list in a profile.
	MaxSkills int `koanf:"max_skills"`

	// Policy names the scoring policy: complementary or aggregate.
	Policy string `koanf:"policy"`

	// Comparison selects skill matching: case_sensitive or fold_case.
	Comparison string `koanf:"comparison"`

	Bonus     matching.BonusWeights     `koanf:"bonus"`
	Aggregate matching.AggregateWeights `koanf:"aggregate"`

	// Storage selects the profile and suggestion backend: memory or postgres.
	Storage string `koanf:"storage"`

	// PostgresDSN is used when Storage is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisAddr enables the suggestion cache when set.
	RedisAddr string `koanf:"redis_addr"`

	// RedisTTL is the lifetime of cached suggestion lists.
	RedisTTL time.Duration `koanf:"redis_ttl"`

	// RateLimit is the sustained requests per second allowed by the API.
	// Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the token bucket size.
	RateBurst int `koanf:"rate_burst"`
}

// New returns a Config filled with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ShutdownTimeout: 10 * time.Second,
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      100_000,
		MaxRankLimit:    100,
		SuggestionLimit: matching.DefaultSuggestionLimit,
		MaxSkills:       matching.DefaultMaxSkills,
		Policy:          matching.PolicyComplementary,
		Comparison:      matching.CaseSensitive.String(),
		Bonus:           matching.DefaultBonusWeights(),
		Aggregate:       matching.DefaultAggregateWeights(),
		Storage:         StorageMemory,
		RedisTTL:        5 * time.Minute,
		RateLimit:       200,
		RateBurst:       400,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Storage != StorageMemory && c.Storage != StoragePostgres:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	case c.Storage == StoragePostgres && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn is required for postgres storage", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must be >= 0", ErrInvalidConfig)
	}
	if _, err := c.EngineOptions(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// EngineOptions translates the scoring settings into matching options.
func (c *Config) EngineOptions() ([]matching.Option, error) {
	policy, err := matching.NewPolicy(c.Policy, c.Bonus, c.Aggregate)
	if err != nil {
		return nil, err
	}
	cmp, err := matching.ParseComparison(c.Comparison)
	if err != nil {
		return nil, err
	}
	return []matching.Option{
		matching.WithPolicy(policy),
		matching.WithComparison(cmp),
		matching.WithSuggestionLimit(c.SuggestionLimit),
	}, nil
}
