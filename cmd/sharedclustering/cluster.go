package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TrevorS/sharedclustering"
)

var clusterOverlapping bool

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group matches into clusters",
	Long: `Build a merge tree of the matches, split it into primary clusters, and
report for every match the other clusters it correlates with.

Examples:
  sharedclustering cluster -i matches.yaml
  sharedclustering cluster -i matches.yaml -c config.yaml --overlapping`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().BoolVar(&clusterOverlapping, "overlapping", false, "Report overlapping cluster membership")
}

func runCluster(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	matches, err := readMatches(inputPath)
	if err != nil {
		return err
	}
	logger := newLogger()

	roots := sharedclustering.BuildMergeTree(matches, cfg.DistanceMetric(), cfg.Workers, logger)
	analysis, err := sharedclustering.Analyze(cmd.Context(), roots, cfg, sharedclustering.NewProgress(logger), logger)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	return writeClusters(cmd.OutOrStdout(), analysis, matchNames(matches), clusterOverlapping)
}

// writeClusters prints one tab-separated row per leaf in tree order.
func writeClusters(w io.Writer, a *sharedclustering.Analysis, names map[int]string, overlapping bool) error {
	if _, err := fmt.Fprintln(w, "index\tname\tcluster\tcorrelated"); err != nil {
		return err
	}
	for i, leaf := range a.Leaves {
		cluster := strconv.Itoa(a.ClusterNumbers[leaf.Index])
		correlated := a.CorrelatedClusters[i]
		if overlapping {
			cluster = joinInts(a.OverlappingClusterNumbers[leaf.Index])
			correlated = a.OverlappingCorrelatedClusters[i]
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", leaf.Index, names[leaf.Index], cluster, joinInts(correlated)); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
