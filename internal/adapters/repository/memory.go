package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/okian/tutormatch/internal/domain/model"
)

// MemoryStore keeps profiles and suggestions in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]model.Profile
	suggestions map[string][]model.MatchSuggestion
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:    make(map[string]model.Profile),
		suggestions: make(map[string][]model.MatchSuggestion),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, p model.Profile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	p = cloneProfile(p)
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.RLock()
	p, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneProfile(p), nil
}

func (s *MemoryStore) DiscoverablePool(ctx context.Context, excludeID string) ([]model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.RLock()
	pool := make([]model.Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id == excludeID || !p.Discoverable() {
			continue
		}
		pool = append(pool, cloneProfile(p))
	}
	s.mu.RUnlock()
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

func (s *MemoryStore) Save(ctx context.Context, ownerID string, suggestions []model.MatchSuggestion) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	cp := make([]model.MatchSuggestion, len(suggestions))
	for i, sg := range suggestions {
		sg.CommonTopics = slices.Clone(sg.CommonTopics)
		cp[i] = sg
	}
	s.mu.Lock()
	s.suggestions[ownerID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]model.MatchSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.RLock()
	stored := s.suggestions[ownerID]
	out := make([]model.MatchSuggestion, len(stored))
	for i, sg := range stored {
		sg.CommonTopics = slices.Clone(sg.CommonTopics)
		out[i] = sg
	}
	s.mu.RUnlock()
	return out, nil
}

// cloneProfile copies the skill slices so callers cannot alias stored state.
func cloneProfile(p model.Profile) model.Profile {
	p.SkillsOffered = slices.Clone(p.SkillsOffered)
	p.SkillsWanted = slices.Clone(p.SkillsWanted)
	return p
}
