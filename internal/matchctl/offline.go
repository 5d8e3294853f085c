package matchctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/internal/domain/types"
)

// LoadProfiles decodes a JSON array of profiles.
func LoadProfiles(r io.Reader) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	for i, p := range profiles {
		if err := matching.ValidateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
	}
	return profiles, nil
}

// LoadProfilesFile reads profiles from path; "-" reads stdin.
func LoadProfilesFile(path string) ([]model.Profile, error) {
	if path == "-" {
		return LoadProfiles(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadProfiles(f)
}

// NewEngine builds an engine with the default weights for the named policy
// and comparison mode.
func NewEngine(policy, comparison string) (*matching.Engine, error) {
	p, err := matching.NewPolicy(policy, matching.DefaultBonusWeights(), matching.DefaultAggregateWeights())
	if err != nil {
		return nil, err
	}
	cmp, err := matching.ParseComparison(comparison)
	if err != nil {
		return nil, err
	}
	return matching.NewEngine(matching.WithPolicy(p), matching.WithComparison(cmp)), nil
}

func find(profiles []model.Profile, id string) (model.Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}

// RankOffline ranks every other profile in the set for id.
func RankOffline(e *matching.Engine, profiles []model.Profile, id string, limit int) ([]types.Entry, error) {
	current, err := find(profiles, id)
	if err != nil {
		return nil, err
	}
	pool := make([]model.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != id {
			pool = append(pool, p)
		}
	}
	ranked, err := e.Rank(current, pool, limit)
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
			Reasons:              e.Explain(current, r.Profile),
		}
	}
	return entries, nil
}

// ExplainOffline scores and explains a -> b.
func ExplainOffline(e *matching.Engine, profiles []model.Profile, aID, bID string) (types.MatchView, error) {
	a, err := find(profiles, aID)
	if err != nil {
		return types.MatchView{}, err
	}
	b, err := find(profiles, bID)
	if err != nil {
		return types.MatchView{}, err
	}
	ms := e.Score(a, b)
	return types.MatchView{
		SourceID:             a.ID,
		TargetID:             b.ID,
		Policy:               e.Policy(),
		Score:                ms.Score,
		Valid:                e.IsValidMatch(a, b),
		CommonSkills:         ms.CommonSkills,
		ComplementaryMatches: ms.ComplementaryMatches,
		LocationMatch:        ms.LocationMatch,
		InstitutionMatch:     ms.InstitutionMatch,
		Reasons:              e.Explain(a, b),
	}, nil
}
