package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/sharedclustering"
)

var closestOutput string

var closestCmd = &cobra.Command{
	Use:   "closest",
	Short: "Rank the closest matches of every match",
	Long: `Rank, for every match, the other matches sharing the most matches with it.

Examples:
  sharedclustering closest -i matches.yaml
  sharedclustering closest -i matches.yaml -o closest.tsv`,
	Args: cobra.NoArgs,
	RunE: runClosest,
}

func init() {
	rootCmd.AddCommand(closestCmd)
	closestCmd.Flags().StringVarP(&closestOutput, "output", "o", "", "Output file (default stdout)")
}

func runClosest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	matches, err := readMatches(inputPath)
	if err != nil {
		return err
	}
	logger := newLogger()

	sink := newTextSink("stdout", cmd.OutOrStdout(), 0)
	if closestOutput != "" {
		sink = createTextSink(closestOutput, 0)
	}

	finder := sharedclustering.NewDistanceFinder(cfg.MinClusterSize, sharedclustering.NewProgress(logger), logger)
	finder.MaxResults = cfg.MaxClusterSize
	id, err := finder.FindClosest(cmd.Context(), matches, sink)
	if err != nil {
		return fmt.Errorf("closest matches: %w", err)
	}
	if closestOutput != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "wrote", id)
	}
	return nil
}
