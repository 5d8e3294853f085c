package matching

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Comparison selects how skill names are compared across profiles.
type Comparison int

const (
	// CaseSensitive compares skill names byte for byte.
	CaseSensitive Comparison = iota
	// FoldCase trims surrounding whitespace and compares Unicode case-folded
	// names.
	FoldCase
)

// String returns the configuration name of the comparison mode.
func (c Comparison) String() string {
	if c == FoldCase {
		return "fold_case"
	}
	return "case_sensitive"
}

// ParseComparison maps a configuration value to a Comparison.
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "case_sensitive", "exact":
		return CaseSensitive, nil
	case "fold_case", "case_insensitive":
		return FoldCase, nil
	default:
		return CaseSensitive, fmt.Errorf("%w: skill comparison %q", ErrInvalidArgument, s)
	}
}

type keyFunc func(string) string

func (c Comparison) key() keyFunc {
	if c == FoldCase {
		// A Caser keeps state, so each call gets its own.
		return func(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }
	}
	return func(s string) string { return s }
}

// skillSet holds comparison keys. Empty names are never members.
type skillSet map[string]struct{}

func newSkillSet(items []string, key keyFunc) skillSet {
	set := make(skillSet, len(items))
	for _, item := range items {
		if k := key(item); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func (s skillSet) has(k string) bool {
	_, ok := s[k]
	return ok
}

// intersect returns the items of from that are members of set, in the order
// of from, with each key reported once and the original spelling kept.
func intersect(from []string, set skillSet, key keyFunc) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(from))
	for _, item := range from {
		k := key(item)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if set.has(k) {
			out = append(out, item)
		}
	}
	return out
}

// overlaps reports whether any item of from is a member of set.
func overlaps(from []string, set skillSet, key keyFunc) bool {
	for _, item := range from {
		if k := key(item); k != "" && set.has(k) {
			return true
		}
	}
	return false
}
