package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olympuslabs/crosscheck/internal/canon"
	"github.com/olympuslabs/crosscheck/internal/workload"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Config string
	Seed   uint64
	Out    string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit one canonical workload fixture",
		Long: `Generate the deterministic fixture document both executables would
receive for a given config and seed.

The fixture is serialized canonically, so the same config and seed produce
byte-identical output on every run. Useful for debugging an executable
outside the harness.

Exit codes:
  0 - Fixture generated
  2 - Command error (bad config)

Examples:
  crosscheck generate --seed 42
  crosscheck generate --config workload.yaml --seed 42 -o fixture.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "workload config YAML (defaults to the built-in workload)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "fixture seed (random when omitted)")
	cmd.Flags().StringVarP(&opts.Out, "output", "o", "", "write the fixture here instead of stdout")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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

	gen, err := workload.NewGenerator(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid workload config", err)
	}
	formatter.VerboseLog("workload: %d transactions, %d blocks (seed %d)",
		cfg.TransactionCount, cfg.BlockCount, gen.Seed())

	data, err := canon.Marshal(gen.Fixture().WireMap())
	if err != nil {
		return WrapExitError(ExitCommandError, "serializing fixture", err)
	}
	data = append(data, '\n')

	// To stdout the fixture goes raw: it is the interchange document,
	// not a CLI response.
	if opts.Out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing fixture", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"path":              opts.Out,
			"seed":              gen.Seed(),
			"transaction_count": cfg.TransactionCount,
			"block_count":       cfg.BlockCount,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fixture written to: %s (seed %d)\n", opts.Out, gen.Seed())
	return nil
}
