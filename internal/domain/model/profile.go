// Package model contains domain models passed between layers.
package model

import "time"

// Profile is the read-only view of a user that the match engine consumes.
// Profiles are owned by the user-management side; the engine never mutates them.
type Profile struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Experience    string    `json:"experience,omitempty"`
	SkillsOffered []string  `json:"skills_offered"`
	SkillsWanted  []string  `json:"skills_wanted"`
	Institution   string    `json:"institution,omitempty"`
	Department    string    `json:"department,omitempty"`
	City          string    `json:"city,omitempty"`
	Public        bool      `json:"profile_public"`
	Banned        bool      `json:"is_banned"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Offers reports whether the profile lists at least one skill it can teach.
func (p Profile) Offers() bool { return len(p.SkillsOffered) > 0 }

// Wants reports whether the profile lists at least one skill it wants to learn.
func (p Profile) Wants() bool { return len(p.SkillsWanted) > 0 }

// Discoverable reports whether the profile may appear in other users' pools.
func (p Profile) Discoverable() bool { return p.Public && !p.Banned }

// MatchSuggestion is a persisted, previously computed match for an owner.
type MatchSuggestion struct {
	TargetID     string    `json:"target_id"`
	Score        float64   `json:"score"`
	CommonTopics []string  `json:"common_topics"`
	ComputedAt   time.Time `json:"computed_at"`
}

// RecomputeRequest asks the worker pool to regenerate suggestions for a profile.
type RecomputeRequest struct {
	RequestID   string    // unique id for idempotency
	ProfileID   string    // owner whose suggestions are rebuilt
	RequestedAt time.Time // enqueue time, used for latency metrics
}
