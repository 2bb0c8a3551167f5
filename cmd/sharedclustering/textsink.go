package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/TrevorS/sharedclustering"
)

// textSink writes tab-separated nearest-neighbor rows. A sink created for
// a path opens its file on the first write or on Save, so a part that is
// never used leaves nothing on disk.
type textSink struct {
	name     string
	path     string
	w        *bufio.Writer
	closer   io.Closer
	rows     int
	rowLimit int
}

func newTextSink(name string, w io.Writer, rowLimit int) *textSink {
	s := &textSink{name: name, w: bufio.NewWriter(w), rowLimit: rowLimit}
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		s.closer = c
	}
	return s
}

// createTextSink returns a sink writing to path.
func createTextSink(path string, rowLimit int) *textSink {
	return &textSink{name: path, path: path, rowLimit: rowLimit}
}

func (s *textSink) writer() (*bufio.Writer, error) {
	if s.w != nil {
		return s.w, nil
	}
	f, err := os.Create(s.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.path, err)
	}
	s.w = bufio.NewWriter(f)
	s.closer = f
	return s.w, nil
}

func (s *textSink) printf(format string, args ...any) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	s.rows++
	_, err = fmt.Fprintf(w, format, args...)
	return err
}

func (s *textSink) WriteHeader(query *sharedclustering.ClusterableMatch) error {
	if query == nil {
		return s.printf("basis\tname\tshared_cm\toverlap\n")
	}
	return s.printf("%d\t%s\t%.1f\t\n", query.Index, query.Match.Name, query.Match.SharedCentimorgans)
}

func (s *textSink) WriteLine(match *sharedclustering.ClusterableMatch, overlap int) error {
	return s.printf("%d\t%s\t%.1f\t%d\n", match.Index, match.Match.Name, match.Match.SharedCentimorgans, overlap)
}

func (s *textSink) SkipLine() error {
	return s.printf("\n")
}

func (s *textSink) Save() (string, error) {
	w, err := s.writer()
	if err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush %s: %w", s.name, err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", s.name, err)
		}
	}
	return s.name, nil
}

func (s *textSink) FileLimitReached() bool {
	return s.rowLimit > 0 && s.rows >= s.rowLimit
}
