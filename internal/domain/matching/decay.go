package matching

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/tutormatch/internal/domain/model"
)

// DecayRate is the per-day exponential decay applied to stored scores.
const DecayRate = 0.05

const hoursPerDay = 24

// Decay returns the suggestion's score after daysElapsed days, rounded to
// one decimal. The suggestion itself is left untouched.
func Decay(s model.MatchSuggestion, daysElapsed float64) (float64, error) {
	if math.IsNaN(daysElapsed) || daysElapsed < 0 {
		return 0, fmt.Errorf("%w: days elapsed must be >= 0, got %v", ErrInvalidArgument, daysElapsed)
	}
	return round1(s.Score * math.Exp(-DecayRate*daysElapsed)), nil
}

// DecayAt decays the suggestion to the given wall-clock time. A ComputedAt in
// the future (clock skew between writers) counts as zero days.
func DecayAt(s model.MatchSuggestion, now time.Time) float64 {
	days := now.Sub(s.ComputedAt).Hours() / hoursPerDay
	if days < 0 || s.ComputedAt.IsZero() {
		days = 0
	}
	score, _ := Decay(s, days)
	return score
}
