package sharedclustering

import "fmt"

// Sink receives ranked nearest-neighbor rows. A query's rows arrive as one
// WriteHeader, one WriteLine per neighbor, then SkipLine. Save finalizes
// the output and returns an identifier for it.
type Sink interface {
	// WriteHeader starts the rows of one query. query is nil when the query
	// is a basis set rather than a real match.
	WriteHeader(query *ClusterableMatch) error
	WriteLine(match *ClusterableMatch, overlap int) error
	SkipLine() error
	Save() (string, error)
}

// LimitedSink is a Sink with a row limit. Once FileLimitReached reports
// true the finder saves it and continues in a fresh sink.
type LimitedSink interface {
	Sink
	FileLimitReached() bool
}

// SinkFactory opens output part n (1-based).
type SinkFactory func(part int) (LimitedSink, error)

// SinkRow is one row recorded by a MemorySink.
type SinkRow struct {
	Header  bool
	Blank   bool
	Match   *ClusterableMatch
	Overlap int
}

// MemorySink records rows in memory. RowLimit > 0 makes FileLimitReached
// report true once that many rows have been written.
type MemorySink struct {
	Name     string
	RowLimit int
	Rows     []SinkRow
	Saved    bool
}

func (s *MemorySink) WriteHeader(query *ClusterableMatch) error {
	s.Rows = append(s.Rows, SinkRow{Header: true, Match: query})
	return nil
}

func (s *MemorySink) WriteLine(match *ClusterableMatch, overlap int) error {
	s.Rows = append(s.Rows, SinkRow{Match: match, Overlap: overlap})
	return nil
}

func (s *MemorySink) SkipLine() error {
	s.Rows = append(s.Rows, SinkRow{Blank: true})
	return nil
}

func (s *MemorySink) Save() (string, error) {
	if s.Saved {
		return "", fmt.Errorf("sharedclustering: sink %q already saved", s.Name)
	}
	s.Saved = true
	return s.Name, nil
}

func (s *MemorySink) FileLimitReached() bool {
	return s.RowLimit > 0 && len(s.Rows) >= s.RowLimit
}

// Lines returns the neighbor rows, skipping headers and blank lines.
func (s *MemorySink) Lines() []SinkRow {
	var lines []SinkRow
	for _, r := range s.Rows {
		if !r.Header && !r.Blank {
			lines = append(lines, r)
		}
	}
	return lines
}
