// Command quadbench times adaptive quadrature with Go and native integrands.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/quadbench/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
