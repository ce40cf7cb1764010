// Package slidingwindow holds the one admission primitive shared by
// every trailing-duration counter in this codec's ambient stack:
// internal/ratelimit's SlidingWindowLimiter bounds how many jobs a
// batch key may submit per duration, internal/flowcontrol's
// SlidingWindow bounds how many a batch key may have outstanding at
// once, and pkg/codecevents's Bus uses one to suppress repeat failure
// events for a noisy descriptor. All three reduce to the same
// question: "how many timestamped events remain within the trailing
// duration, and may one more be admitted." Prior to this package each
// answered it with its own copy of the prune-then-append loop; now
// they all delegate to Window and differ only in what they do with the
// admit/reject answer.
package slidingwindow

import (
	"sync"
	"time"
)

// Window tracks the timestamps of admitted events within a trailing
// duration, pruning expired entries whenever it is touched.
type Window struct {
	mu     sync.Mutex
	size   time.Duration
	events []time.Time
}

// New builds an empty Window covering the trailing size duration.
func New(size time.Duration) *Window {
	return &Window{size: size}
}

// prune drops events older than size relative to now. Caller must hold mu.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.size)
	valid := w.events[:0]
	for _, t := range w.events {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	w.events = valid
}

// Count reports how many events remain within the trailing window.
func (w *Window) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now())
	return len(w.events)
}

// TryAdmit admits one more event if fewer than limit currently remain
// within the trailing window, recording it and returning true;
// otherwise it leaves the window untouched and returns false.
func (w *Window) TryAdmit(limit int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now())
	if len(w.events) < limit {
		w.events = append(w.events, time.Now())
		return true
	}
	return false
}

// Remaining reports how many further events the trailing window would
// still admit against limit.
func (w *Window) Remaining(limit int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now())
	remaining := limit - len(w.events)
	if remaining < 0 {
		return 0
	}
	return remaining
}
