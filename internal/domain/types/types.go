// Package types contains common types used across the application
package types

import "time"

// Entry represents one row of a ranked candidate list
type Entry struct {
	Rank                 int      `json:"rank"`
	ProfileID            string   `json:"profile_id"`
	Score                float64  `json:"score"`
	ComplementaryMatches []string `json:"complementary_matches"`
	Reasons              []string `json:"reasons"`
}

// MatchView is the evidence and explanation for a single pair
type MatchView struct {
	SourceID             string   `json:"source_id"`
	TargetID             string   `json:"target_id"`
	Policy               string   `json:"policy"`
	Score                float64  `json:"score"`
	Valid                bool     `json:"valid"`
	CommonSkills         []string `json:"common_skills"`
	ComplementaryMatches []string `json:"complementary_matches"`
	LocationMatch        bool     `json:"location_match"`
	InstitutionMatch     bool     `json:"institution_match"`
	Reasons              []string `json:"reasons"`
}

// Suggestion is a stored suggestion with its score decayed to the read time
type Suggestion struct {
	TargetID     string    `json:"target_id"`
	Score        float64   `json:"score"`
	StoredScore  float64   `json:"stored_score"`
	CommonTopics []string  `json:"common_topics"`
	ComputedAt   time.Time `json:"computed_at"`
}

// RecomputeStatus acknowledges a suggestion rebuild request
type RecomputeStatus struct {
	RequestID string `json:"request_id"`
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"`
}
