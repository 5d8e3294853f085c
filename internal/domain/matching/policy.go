// Package matching scores, ranks and explains tutoring matches between profiles.
//
// Every function in this package is pure: it reads only its arguments and
// returns freshly built values, so an Engine may be shared by any number of
// goroutines without locking.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/tutormatch/internal/domain/model"
)

// Policy names accepted by NewPolicy and the configuration layer.
const (
	PolicyComplementary = "complementary"
	PolicyAggregate     = "aggregate"
)

const defaultMaxScore = 100

// ScoringPolicy turns a pair's evidence into a number.
type ScoringPolicy interface {
	// Name identifies the policy in logs, metrics and API responses.
	Name() string
	// Score computes the compatibility of source a with target b.
	Score(a, b model.Profile, ev Evidence) float64
}

// BonusWeights configures ComplementaryBonusPolicy.
type BonusWeights struct {
	Teach         float64 `koanf:"teach"`         // per skill, per direction
	Bidirectional float64 `koanf:"bidirectional"` // both directions non-empty
	Common        float64 `koanf:"common"`        // per skill both offer
	City          float64 `koanf:"city"`
	Institution   float64 `koanf:"institution"`
	Department    float64 `koanf:"department"` // only with an institution match
	Max           float64 `koanf:"max"`        // clamp ceiling
}

// DefaultBonusWeights returns the reference weights.
func DefaultBonusWeights() BonusWeights {
	return BonusWeights{
		Teach:         20,
		Bidirectional: 30,
		Common:        5,
		City:          15,
		Institution:   10,
		Department:    5,
		Max:           defaultMaxScore,
	}
}

// AggregateWeights configures WeightedAggregatePolicy.
type AggregateWeights struct {
	SkillToNeed  float64 `koanf:"skill_to_need"`
	NeedToSkill  float64 `koanf:"need_to_skill"`
	Institution  float64 `koanf:"institution"`
	City         float64 `koanf:"city"`
	Completeness float64 `koanf:"completeness"`
}

// DefaultAggregateWeights returns the reference weights.
func DefaultAggregateWeights() AggregateWeights {
	return AggregateWeights{
		SkillToNeed:  3,
		NeedToSkill:  2,
		Institution:  1.5,
		City:         1,
		Completeness: 0.5,
	}
}

// ComplementaryBonusPolicy rewards each teaching direction, adds a fixed
// bonus for mutual exchange and clamps the result to [0, Max].
type ComplementaryBonusPolicy struct {
	w BonusWeights
}

// NewComplementaryBonusPolicy builds the policy. A non-positive Max falls
// back to 100.
func NewComplementaryBonusPolicy(w BonusWeights) *ComplementaryBonusPolicy {
	if w.Max <= 0 {
		w.Max = defaultMaxScore
	}
	return &ComplementaryBonusPolicy{w: w}
}

// Name implements ScoringPolicy.
func (p *ComplementaryBonusPolicy) Name() string { return PolicyComplementary }

// Weights returns a copy of the configured weights.
func (p *ComplementaryBonusPolicy) Weights() BonusWeights { return p.w }

// Score implements ScoringPolicy.
func (p *ComplementaryBonusPolicy) Score(_, _ model.Profile, ev Evidence) float64 {
	score := float64(len(ev.TeachesTarget))*p.w.Teach + float64(len(ev.LearnsFromTarget))*p.w.Teach
	if ev.Bidirectional() {
		score += p.w.Bidirectional
	}
	score += float64(len(ev.CommonSkills)) * p.w.Common
	if ev.LocationMatch {
		score += p.w.City
	}
	if ev.InstitutionMatch {
		score += p.w.Institution
	}
	if ev.DepartmentMatch {
		score += p.w.Department
	}
	return math.Max(0, math.Min(p.w.Max, score))
}

// WeightedAggregatePolicy weighs each direction differently, adds small
// affinity bonuses and a completeness bonus, and rounds to one decimal.
// Its scores are not clamped.
type WeightedAggregatePolicy struct {
	w AggregateWeights
}

// NewWeightedAggregatePolicy builds the policy.
func NewWeightedAggregatePolicy(w AggregateWeights) *WeightedAggregatePolicy {
	return &WeightedAggregatePolicy{w: w}
}

// Name implements ScoringPolicy.
func (p *WeightedAggregatePolicy) Name() string { return PolicyAggregate }

// Weights returns a copy of the configured weights.
func (p *WeightedAggregatePolicy) Weights() AggregateWeights { return p.w }

// Score implements ScoringPolicy.
func (p *WeightedAggregatePolicy) Score(a, b model.Profile, ev Evidence) float64 {
	score := float64(len(ev.TeachesTarget))*p.w.SkillToNeed + float64(len(ev.LearnsFromTarget))*p.w.NeedToSkill
	if ev.InstitutionMatch {
		score += p.w.Institution
	}
	if ev.LocationMatch {
		score += p.w.City
	}
	score += (Completeness(a) + Completeness(b)) / 2 * p.w.Completeness
	return round1(score)
}

// NewPolicy resolves a policy by name.
func NewPolicy(name string, bonus BonusWeights, aggregate AggregateWeights) (ScoringPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyComplementary:
		return NewComplementaryBonusPolicy(bonus), nil
	case PolicyAggregate:
		return NewWeightedAggregatePolicy(aggregate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
