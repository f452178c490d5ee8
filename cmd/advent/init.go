package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/AdventEngine/internal/input"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create empty input files for every day and the answers file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := cfg.InputsPath()
		n, err := input.EnsureFiles(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d input files in %s\n", n, dir)

		if cfg.AnswersFile == "" {
			return nil
		}
		created, err := ledger.EnsureFile(cfg.AnswersFile)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created answers file %s\n", cfg.AnswersFile)
		}
		return nil
	},
}
