package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the parley version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("parley", parley.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
