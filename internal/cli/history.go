package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olympuslabs/crosscheck/internal/align"
	"github.com/olympuslabs/crosscheck/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string
	RunID string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --db <path>",
		Short: "Inspect persisted differential runs",
		Long: `List runs recorded in a history database, newest first, or print one
full report.

Exit codes:
  0 - Listing or report printed
  2 - Command error (database or run not found)

Examples:
  crosscheck history --db history.db
  crosscheck history --db history.db --limit 5
  crosscheck history --db history.db --run 0192b2f0-7c41-7d15-8b6a-3f6d0c2a9be4`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "print the full report for one run ID")
	cmd.Flags().IntVar(&opts.Limit, "limit", history.DefaultListLimit, "maximum runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.DB); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("history database not found: %s", opts.DB))
	}

	store, err := history.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history database", err)
	}
	defer store.Close()

	if opts.RunID != "" {
		return showRun(opts, store, cmd)
	}
	return listRuns(opts, store, cmd)
}

func showRun(opts *HistoryOptions, store *history.Store, cmd *cobra.Command) error {
	report, err := store.GetReport(cmd.Context(), opts.RunID)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		return WrapExitError(ExitCommandError, "loading run", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(report)
	}

	align.Render(cmd.OutOrStdout(), report)
	return nil
}

func listRuns(opts *HistoryOptions, store *history.Store, cmd *cobra.Command) error {
	runs, err := store.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %6.1f%%  %-17s  %s vs %s  (%d cases)\n",
			run.ID,
			run.CreatedAt.Format(align.TimestampLayout),
			run.OverallScore,
			run.Compliance,
			run.PrimaryVersion,
			run.SecondaryVersion,
			run.Cases)
	}
	return nil
}
