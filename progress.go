package sharedclustering

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// ProgressReporter receives progress from long-running batches. Batches
// call Reset with a description and maximum on entry and Reset("", 0) on
// every exit path.
type ProgressReporter interface {
	Reset(description string, maximum int)
	Increment()
}

// ProgressSnapshot is a point-in-time view of a Progress.
type ProgressSnapshot struct {
	Description string
	Value       int
	Maximum     int
}

// Progress is a ProgressReporter that callers can poll from another
// goroutine while a batch runs.
type Progress struct {
	mu          sync.Mutex
	description string
	maximum     int
	value       atomic.Int64

	logger *slog.Logger
}

// NewProgress returns an idle Progress. A nil logger uses slog.Default().
func NewProgress(logger *slog.Logger) *Progress {
	if logger == nil {
		logger = slog.Default()
	}
	return &Progress{logger: logger}
}

// Reset starts a new unit of work, or clears progress when maximum is 0.
func (p *Progress) Reset(description string, maximum int) {
	p.mu.Lock()
	p.description = description
	p.maximum = maximum
	p.value.Store(0)
	p.mu.Unlock()

	if maximum > 0 {
		p.logger.Debug("progress started", "description", description, "maximum", maximum)
	}
}

// Increment advances the counter by one.
func (p *Progress) Increment() {
	p.value.Add(1)
}

// Snapshot returns the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProgressSnapshot{
		Description: p.description,
		Value:       int(p.value.Load()),
		Maximum:     p.maximum,
	}
}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) Reset(string, int) {}
func (NopProgress) Increment()        {}
