// Package service wires the match engine to storage and the recompute
// pipeline, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/tutormatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/tutormatch/internal/adapters/mq/worker"
	"github.com/okian/tutormatch/internal/adapters/repository"
	"github.com/okian/tutormatch/internal/domain/dedupe"
	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/internal/domain/types"
	"github.com/okian/tutormatch/pkg/logger"
	"github.com/okian/tutormatch/pkg/metrics"
)

const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 50_000
)

// Recompute request states reported to callers.
const (
	StatusQueued    = "queued"
	StatusDuplicate = "duplicate"
)

// Service implements the API dependencies for the match engine.
type Service struct {
	mu sync.RWMutex

	engine      *matching.Engine
	profiles    repository.ProfileStore
	suggestions repository.SuggestionStore
	deduper     dedupe.Deduper
	queue       *eventqueue.InMemoryQueue
	pool        *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	maxSkills   int
	now         func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components not provided through options get
// in-memory defaults when the service starts.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		maxSkills:   matching.DefaultMaxSkills,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the recompute pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.engine == nil {
		s.engine = matching.NewEngine()
	}
	if s.profiles == nil || s.suggestions == nil {
		mem := repository.NewMemoryStore()
		if s.profiles == nil {
			s.profiles = mem
		}
		if s.suggestions == nil {
			s.suggestions = mem
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	// Workers outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.String("policy", s.engine.Policy()),
		logger.String("comparison", s.engine.Comparison().String()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains queued recomputes and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping match service")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "match service stopped")
	return nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// UpsertProfile stores p and schedules a recompute of its suggestions.
// requestID makes the submission idempotent; an empty one is generated.
// The profile stays stored when the queue is full; the error is then
// ErrBackpressure.
func (s *Service) UpsertProfile(ctx context.Context, p model.Profile, requestID string) (types.RecomputeStatus, error) {
	if !s.running() {
		return types.RecomputeStatus{}, ErrNotStarted
	}
	if err := matching.ValidateProfile(p); err != nil {
		return types.RecomputeStatus{}, err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now().UTC()
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return types.RecomputeStatus{}, fmt.Errorf("store profile %s: %w", p.ID, err)
	}
	metrics.RecordProfileUpsert()
	s.logger.Debug(ctx, "profile stored", logger.String("profile_id", p.ID))

	return s.SubmitRecompute(ctx, p.ID, requestID)
}

// SubmitRecompute queues a suggestion rebuild for profileID. A request ID
// already seen is acknowledged without queueing again.
func (s *Service) SubmitRecompute(ctx context.Context, profileID, requestID string) (types.RecomputeStatus, error) {
	s.mu.RLock()
	started, deduper, queue := s.started, s.deduper, s.queue
	s.mu.RUnlock()
	if !started {
		return types.RecomputeStatus{}, ErrNotStarted
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	status := types.RecomputeStatus{RequestID: requestID, ProfileID: profileID}

	if deduper.SeenAndRecord(ctx, requestID) {
		metrics.RecordRecomputeRequest(metrics.OutcomeDuplicate)
		status.Status = StatusDuplicate
		return status, nil
	}

	err := queue.Enqueue(ctx, model.RecomputeRequest{
		RequestID:   requestID,
		ProfileID:   profileID,
		RequestedAt: s.now(),
	})
	if err != nil {
		deduper.Unrecord(ctx, requestID)
		metrics.RecordRecomputeRequest(metrics.OutcomeRejected)
		switch {
		case errors.Is(err, eventqueue.ErrFull):
			return status, fmt.Errorf("%w: %s", ErrBackpressure, profileID)
		case errors.Is(err, eventqueue.ErrClosed):
			return status, fmt.Errorf("%w: recompute queue closed", ErrNotStarted)
		}
		return status, fmt.Errorf("enqueue recompute %s: %w", profileID, err)
	}
	metrics.RecordRecomputeRequest(metrics.OutcomeEnqueued)
	status.Status = StatusQueued
	return status, nil
}

// Profile returns the stored profile with id.
func (s *Service) Profile(ctx context.Context, id string) (model.Profile, error) {
	if !s.running() {
		return model.Profile{}, ErrNotStarted
	}
	return s.profiles.Get(ctx, id)
}

// Match scores the pair a -> b and explains the result.
func (s *Service) Match(ctx context.Context, aID, bID string) (types.MatchView, error) {
	if !s.running() {
		return types.MatchView{}, ErrNotStarted
	}
	a, err := s.profiles.Get(ctx, aID)
	if err != nil {
		return types.MatchView{}, err
	}
	b, err := s.profiles.Get(ctx, bID)
	if err != nil {
		return types.MatchView{}, err
	}

	ms := s.engine.Score(a, b)
	metrics.RecordMatchScore(ms.Score)
	return types.MatchView{
		SourceID:             a.ID,
		TargetID:             b.ID,
		Policy:               s.engine.Policy(),
		Score:                ms.Score,
		Valid:                s.engine.IsValidMatch(a, b),
		CommonSkills:         ms.CommonSkills,
		ComplementaryMatches: ms.ComplementaryMatches,
		LocationMatch:        ms.LocationMatch,
		InstitutionMatch:     ms.InstitutionMatch,
		Reasons:              s.engine.Explain(a, b),
	}, nil
}

// Rank ranks the discoverable pool for profile id live. A limit <= 0
// returns every valid candidate.
func (s *Service) Rank(ctx context.Context, id string, limit int) ([]types.Entry, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordRankLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	current, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pool, err := s.profiles.DiscoverablePool(ctx, id)
	if err != nil {
		return nil, err
	}
	ranked, err := s.engine.Rank(current, pool, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]types.Entry, len(ranked))
	for i, r := range ranked {
		entries[i] = types.Entry{
			Rank:                 i + 1,
			ProfileID:            r.Profile.ID,
			Score:                r.Match.Score,
			ComplementaryMatches: r.Match.ComplementaryMatches,
			Reasons:              s.engine.Explain(current, r.Profile),
		}
	}
	return entries, nil
}

// Suggestions returns the stored suggestions for id whose targets are still
// discoverable, with scores decayed to the current time, then narrowed by f.
func (s *Service) Suggestions(ctx context.Context, id string, f matching.Filter) ([]types.Suggestion, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	if _, err := s.profiles.Get(ctx, id); err != nil {
		return nil, err
	}
	stored, err := s.suggestions.List(ctx, id)
	if err != nil {
		return nil, err
	}
	pool, err := s.profiles.DiscoverablePool(ctx, id)
	if err != nil {
		return nil, err
	}
	// Targets that went private or were banned since the last recompute
	// are dropped.
	eligible := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		eligible[p.ID] = struct{}{}
	}

	now := s.now()
	decayed := make([]model.MatchSuggestion, 0, len(stored))
	for _, sg := range stored {
		if _, ok := eligible[sg.TargetID]; !ok {
			continue
		}
		sg.Score = matching.DecayAt(sg, now)
		decayed = append(decayed, sg)
	}
	kept := matching.FilterSuggestions(decayed, f)

	out := make([]types.Suggestion, len(kept))
	byTarget := make(map[string]float64, len(stored))
	for _, sg := range stored {
		byTarget[sg.TargetID] = sg.Score
	}
	for i, sg := range kept {
		out[i] = types.Suggestion{
			TargetID:     sg.TargetID,
			Score:        sg.Score,
			StoredScore:  byTarget[sg.TargetID],
			CommonTopics: sg.CommonTopics,
			ComputedAt:   sg.ComputedAt,
		}
	}
	return out, nil
}

// Recompute regenerates and stores the suggestions for profileID. It is the
// worker pool's unit of work and may also be called synchronously.
func (s *Service) Recompute(ctx context.Context, profileID string) (int, error) {
	current, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return 0, err
	}
	pool, err := s.profiles.DiscoverablePool(ctx, profileID)
	if err != nil {
		return 0, err
	}
	generated, err := s.engine.GenerateSuggestions(current, pool, 0, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if err := s.suggestions.Save(ctx, profileID, generated); err != nil {
		return 0, fmt.Errorf("save suggestions %s: %w", profileID, err)
	}
	return len(generated), nil
}

// ValidateSkills checks a skill selection against the configured bound.
func (s *Service) ValidateSkills(offered, wanted []string) matching.SelectionReport {
	return matching.ValidateSkillSelection(offered, wanted, s.maxSkills)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxSkills":   s.maxSkills,
	}
	if !s.started {
		return stats
	}

	stats["policy"] = s.engine.Policy()
	stats["comparison"] = s.engine.Comparison().String()
	stats["queueLength"] = s.queue.Len()
	stats["dedupeEntries"] = s.deduper.Size()
	stats["recomputed"] = s.pool.Processed()
	stats["recomputeFailures"] = s.pool.Failed()
	if n, err := s.profiles.Count(ctx); err == nil {
		stats["profiles"] = n
		metrics.UpdateProfileCount(n)
	} else {
		stats["profilesError"] = err.Error()
	}
	return stats
}
