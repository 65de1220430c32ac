package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is called after each file of a batch is analyzed.
// current is the number of files done, total the batch size, and path the
// file just finished.
type ProgressFunc func(current, total int, path string)

// Tracker counts batch progress. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int32
	current  atomic.Int32
	rejected atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker that reports each Tick to callback.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add increments the total count by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int32(n))
}

// Tick marks path as done.
func (t *Tracker) Tick(path string) {
	current := int(t.current.Add(1))
	if t.callback != nil {
		t.callback(current, int(t.total.Load()), path)
	}
}

// Reject records a file that produced an error-shaped result.
func (t *Tracker) Reject() {
	t.rejected.Add(1)
}

// Current returns the number of files done.
func (t *Tracker) Current() int {
	return int(t.current.Load())
}

// Total returns the batch size.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

// Rejected returns the number of files that could not be analyzed.
func (t *Tracker) Rejected() int {
	return int(t.rejected.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
