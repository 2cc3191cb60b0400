package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is called after each file with the number of files finished,
// the number expected and the file just finished.
type ProgressFunc func(current, total int, path string)

// Tracker counts finished and skipped files. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int64
	current  atomic.Int64
	skipped  atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker that calls callback after every file.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add raises the expected file count by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int64(n))
}

// Tick marks path as analyzed.
func (t *Tracker) Tick(path string) {
	t.finish(path)
}

// Skip marks path as finished without a result.
func (t *Tracker) Skip(path string) {
	t.skipped.Add(1)
	t.finish(path)
}

func (t *Tracker) finish(path string) {
	current := int(t.current.Add(1))
	if t.callback != nil {
		t.callback(current, int(t.total.Load()), path)
	}
}

// Current returns the number of finished files, skipped ones included.
func (t *Tracker) Current() int {
	return int(t.current.Load())
}

// Skipped returns the number of files finished without a result.
func (t *Tracker) Skipped() int {
	return int(t.skipped.Load())
}

// Total returns the expected file count.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
