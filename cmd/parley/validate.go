package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

// validateCmd statically checks a YAML script.
var validateCmd = &cobra.Command{
	Use:   "validate <script.yaml>",
	Short: "Statically validate a dialogue script",
	Long:  `Checks every transition of the script: targets must exist, conditions and responses must evaluate. All problems are reported at once.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(args[0], os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
