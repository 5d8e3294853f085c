// Package matchctl implements the operator command line for the match
// service: offline ranking and explanation of profile files, synthetic
// profile generation, and seeding a running server.
package matchctl

import "time"

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Options holds the flags shared by every command.
type Options struct {
	BaseURL    string        // base URL of a running server
	Workers    int           // concurrent HTTP workers for seeding
	Timeout    time.Duration // per-request HTTP timeout
	Output     string        // table or json
	Policy     string        // scoring policy for offline commands
	Comparison string        // skill comparison mode for offline commands
	Verbose    bool
}

// SeedStats summarizes a seeding run.
type SeedStats struct {
	Submitted    int           `json:"submitted"`
	Queued       int           `json:"queued"`
	Duplicate    int           `json:"duplicate"`
	Backpressure int           `json:"backpressure"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration"`
}

// PerSecond reports submitted profiles per second.
func (s SeedStats) PerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
