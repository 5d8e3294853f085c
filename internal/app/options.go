package service

import (
	"time"

	"github.com/okian/tutormatch/internal/adapters/repository"
	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending recomputes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSkills bounds each skill list accepted by ValidateSkills.
func WithMaxSkills(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSkills = n
		}
	}
}

// WithEngine sets the match engine. Defaults to matching.NewEngine().
func WithEngine(e *matching.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithProfileStore sets the profile backend. Defaults to memory.
func WithProfileStore(ps repository.ProfileStore) Option {
	return func(s *Service) {
		if ps != nil {
			s.profiles = ps
		}
	}
}

// WithSuggestionStore sets the suggestion backend. Defaults to memory.
func WithSuggestionStore(ss repository.SuggestionStore) Option {
	return func(s *Service) {
		if ss != nil {
			s.suggestions = ss
		}
	}
}

// WithClock replaces time.Now for suggestion stamping and decay.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
