package matching

import (
	"strings"

	"github.com/okian/tutormatch/internal/domain/model"
)

// Explain renders the evidence for a toward b as display lines, in a fixed
// order. Lines without evidence are omitted; the result is never nil.
func (e *Engine) Explain(a, b model.Profile) []string {
	ev := e.Evidence(a, b)
	reasons := make([]string, 0, 5)
	if len(ev.TeachesTarget) > 0 {
		reasons = append(reasons, "You can teach: "+strings.Join(ev.TeachesTarget, ", "))
	}
	if len(ev.LearnsFromTarget) > 0 {
		reasons = append(reasons, "They can teach: "+strings.Join(ev.LearnsFromTarget, ", "))
	}
	if len(ev.CommonSkills) > 0 {
		reasons = append(reasons, "Shared interests: "+strings.Join(ev.CommonSkills, ", "))
	}
	if ev.InstitutionMatch {
		reasons = append(reasons, "Same institution: "+a.Institution)
	}
	if ev.LocationMatch {
		reasons = append(reasons, "Same city: "+a.City)
	}
	return reasons
}
