// Command crosscheck runs differential alignment tests between two
// independently built Olympus ledger executables.
package main

import (
	"fmt"
	"os"

	"github.com/olympuslabs/crosscheck/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
