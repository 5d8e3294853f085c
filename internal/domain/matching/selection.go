package matching

import (
	"fmt"
	"strings"

	"github.com/okian/tutormatch/internal/domain/model"
)

// DefaultMaxSkills bounds each of the offered and wanted lists.
const DefaultMaxSkills = 5

// SelectionReport lists every problem found in a skill selection.
type SelectionReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateSkillSelection checks a user's offered and wanted skill lists
// before they are saved. A max <= 0 uses DefaultMaxSkills.
func ValidateSkillSelection(offered, wanted []string, maxSkills int) SelectionReport {
	if maxSkills <= 0 {
		maxSkills = DefaultMaxSkills
	}
	errs := []string{}
	if len(offered) == 0 {
		errs = append(errs, "select at least one skill")
	}
	if len(offered) > maxSkills {
		errs = append(errs, fmt.Sprintf("maximum %d skills allowed", maxSkills))
	}
	if len(wanted) == 0 {
		errs = append(errs, "select at least one learning need")
	}
	if len(wanted) > maxSkills {
		errs = append(errs, fmt.Sprintf("maximum %d needs allowed", maxSkills))
	}
	key := CaseSensitive.key()
	if dup := intersect(offered, newSkillSet(wanted, key), key); len(dup) > 0 {
		errs = append(errs, "remove duplicate items: "+strings.Join(dup, ", "))
	}
	return SelectionReport{Valid: len(errs) == 0, Errors: errs}
}

// ConnectionState describes the relationship between two users.
type ConnectionState string

// Connection states.
const (
	ConnectionMatched ConnectionState = "matched"
	ConnectionPending ConnectionState = "pending"
	ConnectionNone    ConnectionState = "none"
)

// Connection reports whether a and b are matched, have a pending request in
// either direction, or neither.
func Connection(a, b string, matches []model.Match, requests []model.PeerRequest) ConnectionState {
	for _, m := range matches {
		if m.Involves(a, b) {
			return ConnectionMatched
		}
	}
	for _, r := range requests {
		if r.Status != model.RequestPending {
			continue
		}
		if (r.FromID == a && r.ToID == b) || (r.FromID == b && r.ToID == a) {
			return ConnectionPending
		}
	}
	return ConnectionNone
}
