package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// termCmd runs one command through the terminal interpreter.
var termCmd = &cobra.Command{
	Use:   "term [command...]",
	Short: "Run a command in the kernel terminal",
	Long: `Interprets one command line the way the OS terminal does: ls and
open/launch are handled locally against the synchronized filesystem;
anything else is simulated by the model.

Examples:
  geminios term ls
  geminios term open spotify
  geminios term ps aux`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTerm,
}

func runTerm(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Println(rt.terminal.Run(ctx, strings.Join(args, " ")))
	return nil
}
