package matching

import "github.com/okian/tutormatch/internal/domain/model"

// Evidence is everything a policy or the explainer may read about a pair.
type Evidence struct {
	// TeachesTarget lists skills the source offers that the target wants,
	// in the source's offered order.
	TeachesTarget []string
	// LearnsFromTarget lists skills the target offers that the source wants,
	// in the target's offered order.
	LearnsFromTarget []string
	// CommonSkills lists skills both profiles offer.
	CommonSkills     []string
	LocationMatch    bool
	InstitutionMatch bool
	// DepartmentMatch is only ever true when InstitutionMatch is.
	DepartmentMatch bool
}

// Bidirectional reports whether teaching can flow both ways.
func (e Evidence) Bidirectional() bool {
	return len(e.TeachesTarget) > 0 && len(e.LearnsFromTarget) > 0
}

// Complementary concatenates both teaching directions. A skill that flows
// both ways appears twice.
func (e Evidence) Complementary() []string {
	out := make([]string, 0, len(e.TeachesTarget)+len(e.LearnsFromTarget))
	out = append(out, e.TeachesTarget...)
	return append(out, e.LearnsFromTarget...)
}

func collect(a, b model.Profile, key keyFunc) Evidence {
	ev := Evidence{
		TeachesTarget:    intersect(a.SkillsOffered, newSkillSet(b.SkillsWanted, key), key),
		LearnsFromTarget: intersect(b.SkillsOffered, newSkillSet(a.SkillsWanted, key), key),
		CommonSkills:     intersect(a.SkillsOffered, newSkillSet(b.SkillsOffered, key), key),
		LocationMatch:    sameNonEmpty(a.City, b.City),
		InstitutionMatch: sameNonEmpty(a.Institution, b.Institution),
	}
	ev.DepartmentMatch = ev.InstitutionMatch && sameNonEmpty(a.Department, b.Department)
	return ev
}

func sameNonEmpty(a, b string) bool {
	return a != "" && a == b
}
