package flowcontrol

import (
	"context"
	"testing"
	"time"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

func TestSlidingWindowAcquireUpToLimit(t *testing.T) {
	sw := NewSlidingWindow(WindowConfig{MaxOutstanding: 2, WindowSize: time.Minute, MaxRetries: 1, RetryDelay: time.Millisecond})
	ctx := context.Background()

	if err := sw.Acquire(ctx); err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	if err := sw.Acquire(ctx); err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if sw.Outstanding() != 2 {
		t.Fatalf("outstanding = %d, want 2", sw.Outstanding())
	}
	if err := sw.Acquire(ctx); err != ErrWindowFull {
		t.Fatalf("expected ErrWindowFull, got %v", err)
	}
}

func TestSlidingWindowReleaseFreesSlot(t *testing.T) {
	sw := NewSlidingWindow(WindowConfig{MaxOutstanding: 1, WindowSize: time.Minute, MaxRetries: 1, RetryDelay: time.Millisecond})
	ctx := context.Background()

	if err := sw.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	sw.Release()
	if sw.Outstanding() != 0 {
		t.Fatalf("outstanding = %d, want 0", sw.Outstanding())
	}
	if err := sw.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSlidingWindowAcquireRespectsCancelledContext(t *testing.T) {
	sw := NewSlidingWindow(WindowConfig{MaxOutstanding: 1, WindowSize: time.Minute, MaxRetries: 3, RetryDelay: time.Hour})
	sw.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sw.Acquire(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestControllerIsolatesWindowsPerKey(t *testing.T) {
	c := NewController(WindowConfig{MaxOutstanding: 1, WindowSize: time.Minute, MaxRetries: 1, RetryDelay: time.Millisecond})
	ctx := context.Background()

	if err := c.Acquire(ctx, "batch-a"); err != nil {
		t.Fatalf("acquire batch-a: %v", err)
	}
	if err := c.Acquire(ctx, "batch-b"); err != nil {
		t.Fatalf("expected batch-b to have an independent window: %v", err)
	}
	if c.Outstanding("batch-a") != 1 {
		t.Fatalf("batch-a outstanding = %d, want 1", c.Outstanding("batch-a"))
	}

	c.Release("batch-a")
	if c.Outstanding("batch-a") != 0 {
		t.Fatalf("batch-a outstanding after release = %d, want 0", c.Outstanding("batch-a"))
	}
}

func TestControllerOutstandingForUnknownKey(t *testing.T) {
	c := NewController(DefaultWindowConfig())
	if c.Outstanding("nobody") != 0 {
		t.Fatal("expected 0 outstanding for unknown key")
	}
}

func TestAcquireDescriptorScalesRetryDelayByComplexity(t *testing.T) {
	sw := NewSlidingWindow(WindowConfig{MaxOutstanding: 1, WindowSize: time.Minute, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	ctx := context.Background()

	if err := sw.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	composite := descriptor.NewNamedComposite("pdu",
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, 255),
	)
	start := time.Now()
	if err := sw.AcquireDescriptor(ctx, composite); err != ErrWindowFull {
		t.Fatalf("expected ErrWindowFull, got %v", err)
	}
	elapsed := time.Since(start)
	// complexity 3, retry delay 5ms, 2 retries -> at least 2*3*5ms = 30ms.
	if elapsed < 25*time.Millisecond {
		t.Fatalf("expected backoff to scale with descriptor complexity, elapsed = %v", elapsed)
	}
}
