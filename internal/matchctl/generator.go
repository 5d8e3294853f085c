package matchctl

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/tutormatch/internal/domain/model"
)

var (
	skillCatalog = []string{
		"JavaScript", "Python", "Go", "Rust", "Java", "SQL", "React", "Statistics",
		"Linear Algebra", "Calculus", "Physics", "Chemistry", "English", "German",
		"Spanish", "Guitar", "Piano", "Photoshop", "Public Speaking", "Machine Learning",
	}
	cityCatalog        = []string{"Istanbul", "Ankara", "Izmir", "Bursa", "Antalya"}
	institutionCatalog = []string{"METU", "Bogazici", "ITU", "Ege", "Hacettepe"}
	departmentCatalog  = []string{"Computer Engineering", "Mathematics", "Physics", "Economics"}
)

const maxGeneratedSkills = 3

// randInt returns a uniform value in [0, n) from crypto/rand.
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func pick(items []string) string { return items[randInt(len(items))] }

// pickDistinct draws up to k items not present in exclude.
func pickDistinct(items []string, k int, exclude map[string]struct{}) []string {
	out := make([]string, 0, k)
	for _, i := range permutation(len(items)) {
		if len(out) == k {
			break
		}
		if _, skip := exclude[items[i]]; skip {
			continue
		}
		exclude[items[i]] = struct{}{}
		out = append(out, items[i])
	}
	return out
}

func permutation(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := randInt(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// GenerateProfiles creates n public profiles with random disjoint offered
// and wanted skills drawn from a fixed catalog.
func GenerateProfiles(n int) []model.Profile {
	profiles := make([]model.Profile, n)
	for i := range profiles {
		used := make(map[string]struct{})
		offered := pickDistinct(skillCatalog, 1+randInt(maxGeneratedSkills), used)
		wanted := pickDistinct(skillCatalog, 1+randInt(maxGeneratedSkills), used)
		p := model.Profile{
			ID:            uuid.NewString(),
			SkillsOffered: offered,
			SkillsWanted:  wanted,
			City:          pick(cityCatalog),
			Public:        true,
		}
		// Half of the users share an institution block.
		if randInt(2) == 0 {
			p.Institution = pick(institutionCatalog)
			p.Department = pick(departmentCatalog)
		}
		profiles[i] = p
	}
	return profiles
}
