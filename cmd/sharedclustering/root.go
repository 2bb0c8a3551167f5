package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TrevorS/sharedclustering"
)

var (
	configPath     string
	inputPath      string
	minClusterSize int
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "sharedclustering",
	Short: "Shared-match clustering for DNA matches",
	Long: `sharedclustering measures closeness between DNA matches from their
shared ("in common with") matches, ranks the closest matches, and groups
matches into clusters.

The input is a YAML file:

  matches:
    - index: 0
      name: Jane Doe
      shared_cm: 212.5
      coords: {1: 1, 2: 2}`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "matches.yaml", "YAML file of matches")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().IntVar(&minClusterSize, "min-cluster-size", 0, "Override the configured minimum cluster size")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger returns the command logger, writing to stderr.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (sharedclustering.Config, error) {
	cfg := sharedclustering.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = sharedclustering.LoadConfig(configPath); err != nil {
			return sharedclustering.Config{}, err
		}
	}
	if minClusterSize > 0 {
		cfg.MinClusterSize = minClusterSize
	}
	if err := cfg.Validate(); err != nil {
		return sharedclustering.Config{}, err
	}
	return cfg, nil
}
