package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

// runCmd starts an interactive session over a YAML script.
var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run an interactive dialogue session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		session, _ := cmd.Flags().GetString("session")

		opts := cli.Options{
			ScriptPath: args[0],
			SessionID:  session,
			Debug:      debug,
		}
		if err := cli.RunREPL(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Conversation id (default: \"local\")")
}
