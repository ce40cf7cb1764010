// Package flowcontrol bounds how many decode/encode jobs a batch run may
// have outstanding at once, using the same sliding-window admission
// discipline as a session's in-flight PDU window — keyed here by batch
// name rather than session ID, and weighted by descriptor.Complexity so
// a batch of deeply nested PDUs backs off harder under contention than
// a batch of bare integers.
package flowcontrol

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oarkflow/smpp-codec/internal/slidingwindow"
	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// WindowConfig configures a SlidingWindow's admission policy.
type WindowConfig struct {
	MaxOutstanding int
	WindowSize     time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultWindowConfig returns a conservative default suited to a single
// batch run of descriptor jobs.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		MaxOutstanding: 100,
		WindowSize:     time.Minute,
		MaxRetries:     3,
		RetryDelay:     50 * time.Millisecond,
	}
}

// SlidingWindow admits at most MaxOutstanding requests per WindowSize,
// delegating the trailing-window bookkeeping to slidingwindow.Window —
// the same primitive internal/ratelimit.SlidingWindowLimiter uses to
// bound submission rate and pkg/codecevents.Bus uses to suppress
// repeat failure events.
type SlidingWindow struct {
	config      WindowConfig
	outstanding int64
	window      *slidingwindow.Window
}

// NewSlidingWindow builds a SlidingWindow from config.
func NewSlidingWindow(config WindowConfig) *SlidingWindow {
	return &SlidingWindow{config: config, window: slidingwindow.New(config.WindowSize)}
}

// Acquire blocks, retrying up to MaxRetries times, until a slot opens or
// ctx is cancelled. Returns ErrWindowFull if retries are exhausted. The
// retry delay is constant across attempts; use AcquireDescriptor to
// scale it by the cost of the job being admitted.
func (sw *SlidingWindow) Acquire(ctx context.Context) error {
	return sw.acquire(ctx, sw.config.RetryDelay)
}

// AcquireDescriptor behaves like Acquire, but scales the delay between
// retries by d's structural complexity: a deeply nested composite waits
// proportionally longer between attempts than a single primitive field,
// so a batch of expensive jobs yields window slots to cheaper ones
// instead of hammering the same contended window at a fixed cadence.
func (sw *SlidingWindow) AcquireDescriptor(ctx context.Context, d descriptor.Descriptor) error {
	weight := time.Duration(descriptor.Complexity(d))
	return sw.acquire(ctx, sw.config.RetryDelay*weight)
}

func (sw *SlidingWindow) acquire(ctx context.Context, retryDelay time.Duration) error {
	for retries := 0; retries < sw.config.MaxRetries; retries++ {
		if sw.window.TryAdmit(sw.config.MaxOutstanding) {
			atomic.AddInt64(&sw.outstanding, 1)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return ErrWindowFull
}

// Release frees a previously acquired slot.
func (sw *SlidingWindow) Release() {
	atomic.AddInt64(&sw.outstanding, -1)
}

// Outstanding reports the current outstanding-request count.
func (sw *SlidingWindow) Outstanding() int64 {
	return atomic.LoadInt64(&sw.outstanding)
}

// Controller manages a SlidingWindow per batch key, creating one lazily
// on first use.
type Controller struct {
	windows map[string]*SlidingWindow
	config  WindowConfig
	mu      sync.RWMutex
}

// NewController builds a Controller using config for every new window.
func NewController(config WindowConfig) *Controller {
	return &Controller{windows: make(map[string]*SlidingWindow), config: config}
}

func (c *Controller) windowFor(key string) *SlidingWindow {
	c.mu.Lock()
	defer c.mu.Unlock()
	window, exists := c.windows[key]
	if !exists {
		window = NewSlidingWindow(c.config)
		c.windows[key] = window
	}
	return window
}

// Acquire acquires a slot in key's window, creating the window if this
// is the first request for that key.
func (c *Controller) Acquire(ctx context.Context, key string) error {
	return c.windowFor(key).Acquire(ctx)
}

// AcquireDescriptor acquires a slot in key's window for a job decoding
// or encoding against d, backing off between retries in proportion to
// d's structural complexity. See SlidingWindow.AcquireDescriptor.
func (c *Controller) AcquireDescriptor(ctx context.Context, key string, d descriptor.Descriptor) error {
	return c.windowFor(key).AcquireDescriptor(ctx, d)
}

// Release releases a slot in key's window, a no-op if key has no window.
func (c *Controller) Release(key string) {
	c.mu.RLock()
	window, exists := c.windows[key]
	c.mu.RUnlock()
	if exists {
		window.Release()
	}
}

// Outstanding reports key's current outstanding-request count.
func (c *Controller) Outstanding(key string) int64 {
	c.mu.RLock()
	window, exists := c.windows[key]
	c.mu.RUnlock()
	if exists {
		return window.Outstanding()
	}
	return 0
}

// ErrWindowFull is returned by Acquire when every retry is exhausted.
var ErrWindowFull = &Error{Message: "flow control window is full"}

// Error is the flowcontrol package's error type.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }
