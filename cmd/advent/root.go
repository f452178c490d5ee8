package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/AdventEngine/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "advent",
	Short:        "Day-selectable puzzle runner",
	Long:         "advent loads a day's input, runs its solver in steps, checks every answer and keeps the calendar of earned stars.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to advent.yaml (overrides "+config.EnvConfig+")")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config (--config, then $ADVENT_CONFIG, then
// ./advent.yaml) and builds the logger on the command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(cmd.ErrOrStderr()), nil
}
