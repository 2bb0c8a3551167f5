package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/sharedclustering"
)

// matchFile is the on-disk form of the CLI input.
type matchFile struct {
	Matches []matchRecord `yaml:"matches"`
}

type matchRecord struct {
	Index    int             `yaml:"index"`
	Name     string          `yaml:"name"`
	SharedCM float64         `yaml:"shared_cm"`
	Segments int             `yaml:"segments,omitempty"`
	TreeSize int             `yaml:"tree_size,omitempty"`
	Tags     []string        `yaml:"tags,omitempty"`
	Coords   map[int]float64 `yaml:"coords"`
}

// readMatches loads matches from path, ordered by index.
func readMatches(path string) ([]*sharedclustering.ClusterableMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches: %w", err)
	}
	defer f.Close()
	return decodeMatches(f)
}

func decodeMatches(r io.Reader) ([]*sharedclustering.ClusterableMatch, error) {
	var file matchFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse matches: %w", err)
	}

	seen := make(map[int]bool, len(file.Matches))
	matches := make([]*sharedclustering.ClusterableMatch, 0, len(file.Matches))
	for _, rec := range file.Matches {
		if seen[rec.Index] {
			return nil, fmt.Errorf("parse matches: duplicate index %d", rec.Index)
		}
		seen[rec.Index] = true
		matches = append(matches, sharedclustering.NewClusterableMatch(rec.Index, sharedclustering.Match{
			Name:               rec.Name,
			SharedCentimorgans: rec.SharedCM,
			SharedSegments:     rec.Segments,
			TreeSize:           rec.TreeSize,
			Tags:               rec.Tags,
		}, rec.Coords))
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	return matches, nil
}

// matchNames maps match indexes to names.
func matchNames(matches []*sharedclustering.ClusterableMatch) map[int]string {
	names := make(map[int]string, len(matches))
	for _, m := range matches {
		names[m.Index] = m.Match.Name
	}
	return names
}
