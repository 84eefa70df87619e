package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/olympuslabs/crosscheck/internal/adapter"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <executable>",
		Short: "Print version metadata for one executable",
		Long: `Probe an executable the same way a differential run does: ask it for
--version and fall back to file metadata when it does not answer.

Exit codes:
  0 - Probe completed
  2 - Command error (executable not found)

Examples:
  crosscheck probe ./olympus-c
  crosscheck probe ./olympus-c --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	return cmd
}

func runProbe(opts *ProbeOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("executable not found: %s", path))
	}

	a, err := adapter.New(adapter.Config{
		Label:  "probe",
		Path:   path,
		Logger: opts.Logger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring adapter", err)
	}

	info := a.Probe(cmd.Context())

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(info)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Path:    %s\n", info.Path)
	fmt.Fprintf(w, "Version: %s\n", info.Version)
	if info.BuildTime != nil {
		fmt.Fprintf(w, "Built:   %s\n", info.BuildTime.Format(time.RFC3339))
	}
	if info.SizeBytes > 0 {
		fmt.Fprintf(w, "Size:    %d bytes\n", info.SizeBytes)
	}
	return nil
}
