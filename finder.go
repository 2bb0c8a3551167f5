package sharedclustering

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxClusterSize caps the neighbors reported per match.
const DefaultMaxClusterSize = 100

// finderBase holds what the distance and similarity finders share.
type finderBase struct {
	minClusterSize int
	// MaxResults caps the neighbors reported per match. Default: 100.
	MaxResults     int
	progress       ProgressReporter
	logger         *slog.Logger
}

func newFinderBase(minClusterSize int, progress ProgressReporter, logger *slog.Logger) finderBase {
	if progress == nil {
		progress = NopProgress{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return finderBase{
		minClusterSize: minClusterSize,
		MaxResults:     DefaultMaxClusterSize,
		progress:       progress,
		logger:         logger,
	}
}

// closestTo ranks the neighbors of one match against index.
func (f *finderBase) closestTo(index *BucketIndex, m *ClusterableMatch) []Neighbor {
	return index.NearestNeighbors(NeighborQuery{
		Coords:         sortedKeys(m.Coords),
		Exclude:        m.Index,
		MinClusterSize: f.minClusterSize,
		MaxResults:     f.MaxResults,
		Include:        PerMatchInclusion(f.minClusterSize),
	})
}

// offload runs a batch as one unit of work on its own goroutine and waits
// for it. Progress is reset on every exit path.
func (f *finderBase) offload(ctx context.Context, description string, maximum int, batch func(ctx context.Context) error) error {
	f.progress.Reset(description, maximum)
	defer f.progress.Reset("", 0)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return batch(ctx)
	})
	return g.Wait()
}

// writeNeighbors writes the rows of one query. Queries without neighbors
// write nothing. onLine runs after each written neighbor row.
func writeNeighbors(sink Sink, query *ClusterableMatch, neighbors []Neighbor, onLine func()) error {
	if len(neighbors) == 0 {
		return nil
	}
	if err := sink.WriteHeader(query); err != nil {
		return fmt.Errorf("sharedclustering: write header: %w", err)
	}
	for _, n := range neighbors {
		if err := sink.WriteLine(n.Match, n.Overlap); err != nil {
			return fmt.Errorf("sharedclustering: write match %d: %w", n.Match.Index, err)
		}
		if onLine != nil {
			onLine()
		}
	}
	if err := sink.SkipLine(); err != nil {
		return fmt.Errorf("sharedclustering: write separator: %w", err)
	}
	return nil
}

// DistanceFinder writes, for every match, the matches closest to it into a
// single output.
type DistanceFinder struct {
	finderBase
}

// NewDistanceFinder returns a DistanceFinder. Nil progress and logger are
// replaced by no-op and default implementations.
func NewDistanceFinder(minClusterSize int, progress ProgressReporter, logger *slog.Logger) *DistanceFinder {
	return &DistanceFinder{finderBase: newFinderBase(minClusterSize, progress, logger)}
}

// FindClosest processes matches in order and returns the identifier of the
// saved output. Rows already written when an error occurs stay in the sink.
func (f *DistanceFinder) FindClosest(ctx context.Context, matches []*ClusterableMatch, sink Sink) (string, error) {
	var id string
	err := f.offload(ctx, "Finding closest matches", len(matches), func(ctx context.Context) error {
		index := NewBucketIndex(matches, nil)
		f.logger.Debug("bucket index built", "matches", len(matches), "buckets", index.Len())

		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeNeighbors(sink, m, f.closestTo(index, m), nil); err != nil {
				return err
			}
			f.progress.Increment()
		}

		var err error
		if id, err = sink.Save(); err != nil {
			return fmt.Errorf("sharedclustering: save closest matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// SimilarityFinder writes nearest-neighbor reports across as many output
// parts as the sinks' row limits require.
type SimilarityFinder struct {
	finderBase
}

// NewSimilarityFinder returns a SimilarityFinder. Nil progress and logger
// are replaced by no-op and default implementations.
func NewSimilarityFinder(minClusterSize int, progress ProgressReporter, logger *slog.Logger) *SimilarityFinder {
	return &SimilarityFinder{finderBase: newFinderBase(minClusterSize, progress, logger)}
}

// partWriter rolls output over to a new sink part whenever the current one
// reports its limit reached.
type partWriter struct {
	newSink SinkFactory
	part    int
	sink    LimitedSink
	dirty   bool
	saved   []string
}

func newPartWriter(newSink SinkFactory) (*partWriter, error) {
	w := &partWriter{newSink: newSink}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *partWriter) open() error {
	w.part++
	sink, err := w.newSink(w.part)
	if err != nil {
		return fmt.Errorf("sharedclustering: open output part %d: %w", w.part, err)
	}
	w.sink = sink
	w.dirty = false
	return nil
}

func (w *partWriter) save() error {
	id, err := w.sink.Save()
	if err != nil {
		return fmt.Errorf("sharedclustering: save output part %d: %w", w.part, err)
	}
	w.saved = append(w.saved, id)
	return nil
}

// write emits one query's rows and rolls over if the limit was reached.
func (w *partWriter) write(query *ClusterableMatch, neighbors []Neighbor, onLine func()) error {
	if err := writeNeighbors(w.sink, query, neighbors, onLine); err != nil {
		return err
	}
	if len(neighbors) > 0 {
		w.dirty = true
	}
	if !w.sink.FileLimitReached() {
		return nil
	}
	if err := w.save(); err != nil {
		return err
	}
	return w.open()
}

// finish saves the last part. An empty part opened by a rollover is
// dropped; the first part is always saved.
func (w *partWriter) finish() ([]string, error) {
	if w.dirty || len(w.saved) == 0 {
		if err := w.save(); err != nil {
			return nil, err
		}
	}
	return w.saved, nil
}

// FindClosest processes every match in order and returns the identifiers
// of all saved output parts.
func (f *SimilarityFinder) FindClosest(ctx context.Context, matches []*ClusterableMatch, newSink SinkFactory) ([]string, error) {
	var ids []string
	err := f.offload(ctx, "Finding similar matches", len(matches), func(ctx context.Context) error {
		index := NewBucketIndex(matches, nil)
		w, err := newPartWriter(newSink)
		if err != nil {
			return err
		}

		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.write(m, f.closestTo(index, m), nil); err != nil {
				return err
			}
			f.progress.Increment()
		}

		ids, err = w.finish()
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindClosestToBasis ranks the matches closest to an arbitrary basis set of
// coordinates. Only indexCoords are indexed; a nil indexCoords indexes the
// basis itself. Every qualifying candidate is reported and progress
// advances once per reported match.
func (f *SimilarityFinder) FindClosestToBasis(ctx context.Context, matches []*ClusterableMatch, basis, indexCoords []int, newSink SinkFactory) ([]string, error) {
	if indexCoords == nil {
		indexCoords = basis
	}

	var ids []string
	err := f.offload(ctx, "Finding matches similar to basis", len(matches), func(ctx context.Context) error {
		index := NewBucketIndex(matches, indexCoords)
		neighbors := index.NearestNeighbors(NeighborQuery{
			Coords:         basis,
			Exclude:        -1,
			MinClusterSize: f.minClusterSize,
			Include:        BasisInclusion(f.minClusterSize),
		})
		f.logger.Debug("basis neighbors ranked", "basis", len(basis), "neighbors", len(neighbors))

		w, err := newPartWriter(newSink)
		if err != nil {
			return err
		}
		if err := w.write(nil, neighbors, f.progress.Increment); err != nil {
			return err
		}
		ids, err = w.finish()
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
