// Package sharedclustering analyzes genetic-genealogy shared-match data.
//
// Every DNA match of a test taker carries a sparse vector of the other
// matches it shares ("in common with", ICW). The package measures closeness
// between those sparse vectors, finds the most closely related matches for
// any match or basis set, and partitions a hierarchical merge tree of
// matches into primary clusters with cross-cluster correlation reports.
//
// Basic usage:
//
//	cfg := sharedclustering.DefaultConfig()
//	roots := sharedclustering.BuildMergeTree(matches, cfg.DistanceMetric(), cfg.Workers, nil)
//	analysis, err := sharedclustering.Analyze(ctx, roots, cfg, nil, nil)
//	// analysis.ClusterNumbers[idx] is the 1-based primary cluster of a match (0 = none)
//	// analysis.CorrelatedClusters[i] lists other clusters leaf i correlates with
//
// Closest-match reports are written through a [Sink]:
//
//	finder := sharedclustering.NewDistanceFinder(cfg.MinClusterSize, progress, nil)
//	id, err := finder.FindClosest(ctx, matches, sink)
//
// # Distance metrics
//
// [OverlapWeightedEuclideanMetric] is the default. The other metrics are
// kept as interchangeable strategies and are selected by name through
// [Config.Metric]. Metrics return +Inf when two vectors share no
// informative overlap; tree builders must treat that as "never merge".
//
// # Primary clusters
//
// [HalfMatchPrimaryClusterFinder] accepts the largest subtrees whose two
// boundary leaves are each correlated with at least half of the subtree.
// [GrowthPrimaryClusterFinder] is a size-driven alternative behind the same
// [PrimaryClusterFinder] interface.
package sharedclustering
