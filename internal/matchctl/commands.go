package matchctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/tutormatch/pkg/logger"
)

// Version info set from main.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets version information from build flags.
func SetVersionInfo(v, c, b string) {
	version, commit, buildTime = v, c, b
}

const (
	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 30 * time.Second
	defaultGenSize = 100
)

// NewRootCommand builds the matchctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "matchctl",
		Short:         "Operate and inspect the tutoring match service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(level))
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.Output, "output", "o", FormatTable, "output format (table, json)")
	pf.StringVar(&opts.Policy, "policy", "complementary", "scoring policy for offline commands (complementary, aggregate)")
	pf.StringVar(&opts.Comparison, "comparison", "case_sensitive", "skill comparison for offline commands (case_sensitive, fold_case)")
	pf.StringVar(&opts.BaseURL, "url", defaultBaseURL, "base URL of the match server")
	pf.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRankCommand(opts),
		newExplainCommand(opts),
		newGenerateCommand(opts),
		newSeedCommand(opts),
		newSuggestionsCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func newRankCommand(opts *Options) *cobra.Command {
	var (
		file  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "rank <profile-id>",
		Short: "Rank a profile offline from a file or live on a server",
		Long: `Rank a profile against its candidates.

With -f the ranking runs offline against every other profile in the JSON
file. Without -f the server at --url ranks the profile live against its
discoverable pool.

Examples:
  matchctl rank alice -f profiles.json
  matchctl rank alice -f profiles.json --limit 5 -o json
  matchctl rank alice --url http://localhost:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				client := NewClient(opts.BaseURL, opts.Timeout)
				entries, err := client.Rank(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return Render(cmd.OutOrStdout(), opts.Output, entries)
			}
			engine, err := NewEngine(opts.Policy, opts.Comparison)
			if err != nil {
				return err
			}
			profiles, err := LoadProfilesFile(file)
			if err != nil {
				return err
			}
			entries, err := RankOffline(engine, profiles, args[0], limit)
			if err != nil {
				return err
			}
			return Render(cmd.OutOrStdout(), opts.Output, entries)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON profile file; without it the server is queried")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 for all)")
	return cmd
}

func newExplainCommand(opts *Options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "explain <profile-a> <profile-b>",
		Short: "Score and explain one pair from a profile file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := NewEngine(opts.Policy, opts.Comparison)
			if err != nil {
				return err
			}
			profiles, err := LoadProfilesFile(file)
			if err != nil {
				return err
			}
			view, err := ExplainOffline(engine, profiles, args[0], args[1])
			if err != nil {
				return err
			}
			return Render(cmd.OutOrStdout(), opts.Output, view)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON profile file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newGenerateCommand(_ *Options) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print synthetic profiles as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 1 {
				return fmt.Errorf("count must be positive, got %d", n)
			}
			return Render(cmd.OutOrStdout(), FormatJSON, GenerateProfiles(n))
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", defaultGenSize, "number of profiles")
	return cmd
}

func newSeedCommand(opts *Options) *cobra.Command {
	var (
		file     string
		generate int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Post profiles to a running server",
		Long: `Post profiles from a JSON file, or generated ones, to a running server.

Examples:
  matchctl seed -f profiles.json
  matchctl seed --generate 10000 --workers 16 --url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var profiles = GenerateProfiles(generate)
			if file != "" {
				loaded, err := LoadProfilesFile(file)
				if err != nil {
					return err
				}
				profiles = loaded
			}
			if len(profiles) == 0 {
				return fmt.Errorf("nothing to seed: pass --file or --generate")
			}
			client := NewClient(opts.BaseURL, opts.Timeout)
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("service health check failed: %w", err)
			}
			stats, err := Seed(cmd.Context(), client, profiles, opts.Workers)
			if rerr := Render(cmd.OutOrStdout(), opts.Output, stats); rerr != nil && err == nil {
				err = rerr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON profile file")
	cmd.Flags().IntVar(&generate, "generate", 0, "number of synthetic profiles to post when no file is given")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU()*2, "concurrent HTTP workers")
	return cmd
}

func newSuggestionsCommand(opts *Options) *cobra.Command {
	var (
		minScore float64
		topics   []string
	)
	cmd := &cobra.Command{
		Use:   "suggestions <profile-id>",
		Short: "Show stored suggestions from a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(opts.BaseURL, opts.Timeout)
			out, err := client.Suggestions(cmd.Context(), args[0], minScore, topics)
			if err != nil {
				return err
			}
			return Render(cmd.OutOrStdout(), opts.Output, out)
		},
	}
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum decayed score")
	cmd.Flags().StringSliceVar(&topics, "topic", nil, "keep suggestions sharing any of these topics")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "matchctl %s\n  commit: %s\n  built:  %s\n", version, commit, buildTime)
			return err
		},
	}
}
