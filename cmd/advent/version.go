package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/AdventEngine/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "advent", version.Version)
	},
}
