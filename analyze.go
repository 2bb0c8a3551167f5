package sharedclustering

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// ClusterStats summarizes the primary clusters of an analysis.
type ClusterStats struct {
	Clusters   int
	Leaves     int
	Unassigned int
	MeanSize   float64
	StdDevSize float64
}

// Analysis is the result of partitioning merge trees into clusters.
// All maps and slices are read-only once returned.
type Analysis struct {
	// Leaves lists every leaf in tree order; the correlation reports are
	// parallel to it.
	Leaves []*LeafNode

	// PrimaryClusters are the disjoint primary clusters in left-to-right
	// order. Cluster number i+1 is PrimaryClusters[i].
	PrimaryClusters []*ClusterNode

	// ClusterNumbers maps a leaf index to its 1-based cluster number.
	// Unassigned leaves are absent.
	ClusterNumbers map[int]int

	// OverlappingClusterNumbers maps a leaf index to every cluster it
	// belongs to once clusters are extended.
	OverlappingClusterNumbers map[int][]int

	// CorrelatedClusters[i] lists the other clusters Leaves[i] correlates with.
	CorrelatedClusters [][]int

	// OverlappingCorrelatedClusters is CorrelatedClusters computed against
	// OverlappingClusterNumbers.
	OverlappingCorrelatedClusters [][]int

	// Unassigned lists the leaves outside every primary cluster.
	Unassigned []*LeafNode

	Stats ClusterStats
}

// Analyze partitions every root of a merge-tree forest into primary
// clusters, numbers them, and reports cross-cluster correlation for every
// leaf. Progress is reset on every exit path.
func Analyze(ctx context.Context, roots []Node, cfg Config, progress ProgressReporter, logger *slog.Logger) (*Analysis, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = NopProgress{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	progress.Reset("Finding primary clusters", len(roots))
	defer progress.Reset("", 0)

	finder := cfg.PrimaryClusterFinder()
	a := &Analysis{}
	for _, root := range roots {
		clusters := finder.PrimaryClusters(root)
		a.PrimaryClusters = append(a.PrimaryClusters, clusters...)
		a.Leaves = append(a.Leaves, Leaves(root)...)
		a.Unassigned = append(a.Unassigned, UnassignedLeaves(root, clusters)...)
		progress.Increment()
	}

	a.ClusterNumbers = AssignClusterNumbers(a.PrimaryClusters)
	a.OverlappingClusterNumbers = ExtendClusterNumbers(a.PrimaryClusters, a.Leaves)

	progress.Reset("Finding correlated clusters", len(a.Leaves))
	correlation := NewCorrelatedClusterFinder(a.Leaves, cfg.ImmediateFamily, cfg.MinClusterSize)

	var err error
	a.CorrelatedClusters, err = correlation.AllCorrelatedClusters(ctx, a.ClusterNumbers, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("sharedclustering: correlated clusters: %w", err)
	}
	a.OverlappingCorrelatedClusters, err = correlation.AllCorrelatedClustersMulti(ctx, a.OverlappingClusterNumbers, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("sharedclustering: overlapping correlated clusters: %w", err)
	}

	a.Stats = clusterStats(a)
	logger.Info("clusters found",
		"clusters", a.Stats.Clusters,
		"leaves", a.Stats.Leaves,
		"unassigned", a.Stats.Unassigned,
		"mean_size", a.Stats.MeanSize,
		"stddev_size", a.Stats.StdDevSize,
	)
	return a, nil
}

func clusterStats(a *Analysis) ClusterStats {
	s := ClusterStats{
		Clusters:   len(a.PrimaryClusters),
		Leaves:     len(a.Leaves),
		Unassigned: len(a.Unassigned),
	}
	if len(a.PrimaryClusters) == 0 {
		return s
	}

	sizes := make([]float64, len(a.PrimaryClusters))
	for i, c := range a.PrimaryClusters {
		sizes[i] = float64(c.LeafCount())
	}
	if len(sizes) == 1 {
		s.MeanSize = sizes[0]
		return s
	}
	s.MeanSize, s.StdDevSize = stat.MeanStdDev(sizes, nil)
	return s
}
