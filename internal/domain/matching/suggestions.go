package matching

import (
	"time"

	"github.com/okian/tutormatch/internal/domain/model"
)

// CommonTopics returns every subject the two profiles have in common in any
// role: what a teaches b, what b teaches a, what both teach and what both
// want to learn. Each topic appears once, in first-seen order.
func (e *Engine) CommonTopics(a, b model.Profile) []string {
	topics := []string{}
	seen := make(map[string]struct{})
	add := func(items []string) {
		for _, item := range items {
			k := e.key(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			topics = append(topics, item)
		}
	}
	add(intersect(a.SkillsOffered, newSkillSet(b.SkillsWanted, e.key), e.key))
	add(intersect(a.SkillsWanted, newSkillSet(b.SkillsOffered, e.key), e.key))
	add(intersect(a.SkillsOffered, newSkillSet(b.SkillsOffered, e.key), e.key))
	add(intersect(a.SkillsWanted, newSkillSet(b.SkillsWanted, e.key), e.key))
	return topics
}

// GenerateSuggestions ranks pool for current and converts the positively
// scored candidates into suggestions stamped with now. A limit <= 0 uses the
// engine's default suggestion limit.
func (e *Engine) GenerateSuggestions(current model.Profile, pool []model.Profile, limit int, now time.Time) ([]model.MatchSuggestion, error) {
	if limit <= 0 {
		limit = e.suggestionLimit
	}
	ranked, err := e.Rank(current, pool, 0)
	if err != nil {
		return nil, err
	}
	out := make([]model.MatchSuggestion, 0, min(limit, len(ranked)))
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		if r.Match.Score <= 0 {
			continue
		}
		out = append(out, model.MatchSuggestion{
			TargetID:     r.Profile.ID,
			Score:        r.Match.Score,
			CommonTopics: e.CommonTopics(current, r.Profile),
			ComputedAt:   now,
		})
	}
	return out, nil
}

// Filter narrows stored suggestions. Zero values disable a criterion.
type Filter struct {
	MinScore float64
	Topics   []string
}

// FilterSuggestions keeps suggestions scoring at least f.MinScore that share
// at least one topic with f.Topics. The input slice is not modified.
func FilterSuggestions(suggestions []model.MatchSuggestion, f Filter) []model.MatchSuggestion {
	wanted := make(map[string]struct{}, len(f.Topics))
	for _, t := range f.Topics {
		wanted[t] = struct{}{}
	}
	out := make([]model.MatchSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if f.MinScore > 0 && s.Score < f.MinScore {
			continue
		}
		if len(wanted) > 0 && !anyTopic(s.CommonTopics, wanted) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func anyTopic(topics []string, wanted map[string]struct{}) bool {
	for _, t := range topics {
		if _, ok := wanted[t]; ok {
			return true
		}
	}
	return false
}
