package matching

import "github.com/okian/tutormatch/internal/domain/model"

const (
	completenessFields = 8
	minBioLength       = 10
)

// Completeness returns the fraction of the profile checklist that is filled
// in: display name, a bio longer than ten characters, institution,
// department, city, experience, and at least one offered and wanted skill.
func Completeness(p model.Profile) float64 {
	filled := 0
	for _, ok := range []bool{
		p.DisplayName != "",
		len(p.Bio) > minBioLength,
		p.Institution != "",
		p.Department != "",
		p.City != "",
		p.Experience != "",
		p.Offers(),
		p.Wants(),
	} {
		if ok {
			filled++
		}
	}
	return float64(filled) / completenessFields
}
