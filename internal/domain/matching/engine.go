package matching

import (
	"fmt"
	"strings"

	"github.com/okian/tutormatch/internal/domain/model"
)

// DefaultSuggestionLimit caps generated suggestions when no limit is given.
const DefaultSuggestionLimit = 10

// MatchScore is the result of scoring one pair.
type MatchScore struct {
	Score                float64
	CommonSkills         []string
	ComplementaryMatches []string
	TeachesTarget        []string
	LearnsFromTarget     []string
	LocationMatch        bool
	InstitutionMatch     bool
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy sets the scoring policy.
func WithPolicy(p ScoringPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithComparison sets how skill names are compared.
func WithComparison(c Comparison) Option {
	return func(e *Engine) {
		e.comparison = c
	}
}

// WithSuggestionLimit sets the default number of generated suggestions.
func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestionLimit = n
		}
	}
}

// Engine scores, ranks and explains matches under one policy.
type Engine struct {
	policy          ScoringPolicy
	comparison      Comparison
	key             keyFunc
	suggestionLimit int
}

// NewEngine creates an engine. Without options it uses the complementary
// bonus policy with reference weights and case-sensitive skill comparison.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy:          NewComplementaryBonusPolicy(DefaultBonusWeights()),
		comparison:      CaseSensitive,
		suggestionLimit: DefaultSuggestionLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.key = e.comparison.key()
	return e
}

// Policy returns the name of the active scoring policy.
func (e *Engine) Policy() string { return e.policy.Name() }

// Comparison returns the active skill comparison mode.
func (e *Engine) Comparison() Comparison { return e.comparison }

// Evidence collects the raw match signals of a toward b.
func (e *Engine) Evidence(a, b model.Profile) Evidence {
	return collect(a, b, e.key)
}

// Score computes the compatibility of a with b. It is total: profiles with
// no skills simply score zero.
func (e *Engine) Score(a, b model.Profile) MatchScore {
	ev := e.Evidence(a, b)
	return MatchScore{
		Score:                e.policy.Score(a, b, ev),
		CommonSkills:         ev.CommonSkills,
		ComplementaryMatches: ev.Complementary(),
		TeachesTarget:        ev.TeachesTarget,
		LearnsFromTarget:     ev.LearnsFromTarget,
		LocationMatch:        ev.LocationMatch,
		InstitutionMatch:     ev.InstitutionMatch,
	}
}

// ValidateProfile rejects profiles that cannot take part in matching.
func ValidateProfile(p model.Profile) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: profile id is required", ErrInvalidArgument)
	}
	return nil
}
