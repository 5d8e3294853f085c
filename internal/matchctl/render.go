package matchctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/internal/domain/types"
)

// Render writes v to w as an indented JSON document or a table.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatTable, "":
		return renderTable(w, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, v any) error {
	switch x := v.(type) {
	case []types.Entry:
		if len(x) == 0 {
			_, err := fmt.Fprintln(w, "No matches found.")
			return err
		}
		rows := make([][]string, len(x))
		for i, e := range x {
			rows[i] = []string{strconv.Itoa(e.Rank), e.ProfileID, formatScore(e.Score), strings.Join(e.Reasons, "; ")}
		}
		return table(w, []string{"RANK", "PROFILE", "SCORE", "REASONS"}, rows)
	case []types.Suggestion:
		if len(x) == 0 {
			_, err := fmt.Fprintln(w, "No suggestions found.")
			return err
		}
		rows := make([][]string, len(x))
		for i, s := range x {
			rows[i] = []string{s.TargetID, formatScore(s.Score), formatScore(s.StoredScore), strings.Join(s.CommonTopics, ", ")}
		}
		return table(w, []string{"PROFILE", "SCORE", "STORED", "TOPICS"}, rows)
	case types.MatchView:
		rows := [][]string{
			{"source", x.SourceID},
			{"target", x.TargetID},
			{"policy", x.Policy},
			{"score", formatScore(x.Score)},
			{"valid", strconv.FormatBool(x.Valid)},
			{"complementary", strings.Join(x.ComplementaryMatches, ", ")},
			{"common", strings.Join(x.CommonSkills, ", ")},
		}
		for _, r := range x.Reasons {
			rows = append(rows, []string{"reason", r})
		}
		return table(w, []string{"FIELD", "VALUE"}, rows)
	case SeedStats:
		rows := [][]string{
			{"submitted", strconv.Itoa(x.Submitted)},
			{"queued", strconv.Itoa(x.Queued)},
			{"duplicate", strconv.Itoa(x.Duplicate)},
			{"backpressure", strconv.Itoa(x.Backpressure)},
			{"failed", strconv.Itoa(x.Failed)},
			{"duration", x.Duration.String()},
			{"per_second", strconv.FormatFloat(x.PerSecond(), 'f', 1, 64)},
		}
		return table(w, []string{"METRIC", "VALUE"}, rows)
	case []model.Profile:
		// Profiles are meant to be fed back into other commands.
		return Render(w, FormatJSON, x)
	default:
		return fmt.Errorf("%w: no table layout for %T", ErrUnknownFormat, v)
	}
}

func table(w io.Writer, header []string, rows [][]string) error {
	t := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	t.Header(cols...)
	for _, r := range rows {
		if err := t.Append(r); err != nil {
			return fmt.Errorf("table row: %w", err)
		}
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
