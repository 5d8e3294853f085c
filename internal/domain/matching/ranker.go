package matching

import (
	"fmt"
	"sort"

	"github.com/okian/tutormatch/internal/domain/model"
)

// Ranked pairs a candidate with its score against the current profile.
type Ranked struct {
	Profile model.Profile
	Match   MatchScore
}

// IsValidMatch reports whether b is an eligible candidate for a.
// The banned state of a itself is the caller's concern.
func (e *Engine) IsValidMatch(a, b model.Profile) bool {
	if a.ID == b.ID {
		return false
	}
	if !a.Public || !b.Public {
		return false
	}
	if b.Banned {
		return false
	}
	if !((a.Offers() && b.Wants()) || (b.Offers() && a.Wants())) {
		return false
	}
	return overlaps(a.SkillsOffered, newSkillSet(b.SkillsWanted, e.key), e.key) ||
		overlaps(b.SkillsOffered, newSkillSet(a.SkillsWanted, e.key), e.key)
}

// Rank filters pool down to valid candidates for current, scores them and
// orders them by score, then by number of complementary matches, then by
// pool order. A limit <= 0 keeps every candidate.
func (e *Engine) Rank(current model.Profile, pool []model.Profile, limit int) ([]Ranked, error) {
	if err := ValidateProfile(current); err != nil {
		return nil, err
	}
	ranked := make([]Ranked, 0, len(pool))
	for i, candidate := range pool {
		if err := ValidateProfile(candidate); err != nil {
			return nil, fmt.Errorf("pool[%d]: %w", i, err)
		}
		if !e.IsValidMatch(current, candidate) {
			continue
		}
		ranked = append(ranked, Ranked{Profile: candidate, Match: e.Score(current, candidate)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Match.Score, ranked[j].Match.Score
		if si != sj {
			return si > sj
		}
		return len(ranked[i].Match.ComplementaryMatches) > len(ranked[j].Match.ComplementaryMatches)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
