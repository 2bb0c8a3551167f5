package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TrevorS/sharedclustering"
)

var (
	similarOutput string
	similarBasis  []int
	similarIndex  []int
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Rank similar matches into size-limited output files",
	Long: `Rank the matches most similar to every match, or to a basis set of
match indexes, writing as many output files as the row limit requires.

Examples:
  sharedclustering similar -i matches.yaml -o similar
  sharedclustering similar -i matches.yaml -o basis --basis 3,7,12`,
	Args: cobra.NoArgs,
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().StringVarP(&similarOutput, "output", "o", "similar", "Output file prefix")
	similarCmd.Flags().IntSliceVar(&similarBasis, "basis", nil, "Basis match indexes (basis mode)")
	similarCmd.Flags().IntSliceVar(&similarIndex, "index-coords", nil, "Coordinates to index in basis mode (default: the basis)")
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	matches, err := readMatches(inputPath)
	if err != nil {
		return err
	}
	logger := newLogger()

	prefix := strings.TrimSuffix(similarOutput, ".tsv")
	newSink := func(part int) (sharedclustering.LimitedSink, error) {
		return createTextSink(fmt.Sprintf("%s-%d.tsv", prefix, part), cfg.RowLimit), nil
	}

	finder := sharedclustering.NewSimilarityFinder(cfg.MinClusterSize, sharedclustering.NewProgress(logger), logger)
	finder.MaxResults = cfg.MaxClusterSize

	var ids []string
	if len(similarBasis) > 0 {
		ids, err = finder.FindClosestToBasis(cmd.Context(), matches, similarBasis, similarIndex, newSink)
	} else {
		ids, err = finder.FindClosest(cmd.Context(), matches, newSink)
	}
	if err != nil {
		return fmt.Errorf("similar matches: %w", err)
	}

	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
