package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/olympuslabs/crosscheck/internal/adapter"
	"github.com/olympuslabs/crosscheck/internal/align"
	"github.com/olympuslabs/crosscheck/internal/compare"
	"github.com/olympuslabs/crosscheck/internal/history"
	"github.com/olympuslabs/crosscheck/internal/runner"
	"github.com/olympuslabs/crosscheck/internal/workload"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Primary   string
	Secondary string
	Config    string
	Seed      uint64
	Out       string
	DB        string
	Timeout   time.Duration
	Filter    string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run --primary <bin> --secondary <bin>",
		Short: "Run the differential catalogue against two builds",
		Long: `Run every catalogue test against two ledger executables and score
their alignment.

Both executables receive identical fixture files and are expected to print
a JSON result object to stdout. Results are compared across the functional,
performance, memory and hash consistency dimensions; the run writes an
alignment report and prints it.

Exit codes:
  0 - Every case passed the functional dimension
  1 - One or more cases failed functional alignment
  2 - Command error (missing executables, bad config)

Examples:
  crosscheck run --primary ./olympus-c --secondary ./olympus-rs
  crosscheck run --primary ./olympus-c --secondary ./olympus-rs --seed 42
  crosscheck run --primary ./olympus-c --secondary ./olympus-rs --filter "block_*"
  crosscheck run --primary ./olympus-c --secondary ./olympus-rs --db history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Primary, "primary", "", "primary executable under test (required)")
	cmd.Flags().StringVar(&opts.Secondary, "secondary", "", "secondary executable under test (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "workload config YAML (defaults to the built-in workload)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "fixture seed (random when omitted)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "report path (defaults to alignment_report_<unix>.json)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "history database to record the run in")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", adapter.DefaultRunTimeout, "per-invocation timeout")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only test types matching this glob")
	_ = cmd.MarkFlagRequired("primary")
	_ = cmd.MarkFlagRequired("secondary")

	return cmd
}

func runRun(opts *RunOptions, cmd *cobra.Command) error {
	for _, side := range []struct{ label, path string }{
		{"primary", opts.Primary},
		{"secondary", opts.Secondary},
	} {
		if _, err := os.Stat(side.path); err != nil {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("%s executable not found: %s", side.label, side.path))
		}
	}

	cfg := workload.DefaultConfig()
	if opts.Config != "" {
		loaded, err := workload.LoadConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading workload config", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		cfg.Seed = &seed
	}

	logger := opts.Logger(cmd.ErrOrStderr())

	primary, err := adapter.New(adapter.Config{
		Label:   "primary",
		Path:    opts.Primary,
		Timeout: opts.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring primary adapter", err)
	}
	secondary, err := adapter.New(adapter.Config{
		Label:   "secondary",
		Path:    opts.Secondary,
		Timeout: opts.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring secondary adapter", err)
	}

	r, err := runner.New(runner.Config{
		Primary:    primary,
		Secondary:  secondary,
		Workload:   cfg,
		Thresholds: compare.DefaultThresholds(),
		Filter:     opts.Filter,
		Logger:     logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring runner", err)
	}

	report, err := r.RunAll(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "differential run failed", err)
	}

	savedPath, err := report.Save(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "saving report", err)
	}

	if opts.DB != "" {
		if err := recordRun(cmd, opts.DB, report); err != nil {
			return err
		}
	}

	failed := 0
	for _, result := range report.Results {
		if !result.FunctionalPass() {
			failed++
		}
	}

	if opts.Format == "json" {
		if err := outputRunJSON(cmd, report, savedPath, failed); err != nil {
			return err
		}
	} else {
		align.Render(cmd.OutOrStdout(), report)
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", savedPath)
	}

	if failed > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d case(s) failed functional alignment", failed))
	}
	return nil
}

func recordRun(cmd *cobra.Command, dbPath string, report *align.Report) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history database", err)
	}
	defer store.Close()

	if err := store.SaveReport(cmd.Context(), report); err != nil {
		return WrapExitError(ExitCommandError, "recording run", err)
	}
	return nil
}

// runReportEnvelope pairs the report with where it was written.
type runReportEnvelope struct {
	Report     *align.Report `json:"report"`
	ReportPath string        `json:"report_path"`
}

// outputRunJSON prints the report envelope. Functional failures still
// produce the full report; the error block and exit code carry the verdict.
func outputRunJSON(cmd *cobra.Command, report *align.Report, savedPath string, failed int) error {
	response := CLIResponse{
		Status: "ok",
		Data:   runReportEnvelope{Report: report, ReportPath: savedPath},
	}
	if failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_ALIGNMENT_FAILED",
			Message: fmt.Sprintf("%d case(s) failed functional alignment", failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
