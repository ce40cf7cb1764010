package errorrecovery

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	config := DefaultRetryConfig()
	calls := 0
	result := Retry(context.Background(), config, func() error {
		calls++
		return nil
	})
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryStopsAfterNonRetryableError(t *testing.T) {
	config := DefaultRetryConfig()
	calls := 0
	result := Retry(context.Background(), config, func() error {
		calls++
		return errors.New("permission denied")
	})
	if result.Error == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 since the error is not retryable", calls)
	}
}

func TestRetryRetriesRetryableError(t *testing.T) {
	config := RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2,
		JitterFactor:  0,
	}
	calls := 0
	result := Retry(context.Background(), config, func() error {
		calls++
		if calls < 3 {
			return syscall.EBUSY
		}
		return nil
	})
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Retry(ctx, DefaultRetryConfig(), func() error {
		t.Fatal("fn should not be called with a cancelled context")
		return nil
	})
	if result.Error == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestIsRetryableErrorRecognizesTransientErrno(t *testing.T) {
	for _, errno := range []syscall.Errno{syscall.EAGAIN, syscall.EBUSY, syscall.EINTR, syscall.ENOSPC} {
		if !IsRetryableError(errno) {
			t.Fatalf("expected %v to be retryable", errno)
		}
	}
}

func TestIsRetryableErrorRejectsPermanentFailure(t *testing.T) {
	if IsRetryableError(errors.New("no such file or directory")) {
		t.Fatal("expected a plain wrapped error to be non-retryable")
	}
	if IsRetryableError(nil) {
		t.Fatal("expected nil to be non-retryable")
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour, SuccessThreshold: 1})
	failing := func() error { return syscall.EBUSY }

	cb.Call(failing)
	cb.Call(failing)

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want StateOpen", cb.State())
	}
	if err := cb.Call(failing); err == nil {
		t.Fatal("expected circuit breaker to reject call while open")
	}
}

func TestCircuitBreakerIgnoresNonRetryableFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour, SuccessThreshold: 1})
	permanent := func() error { return errors.New("descriptor does not marshal") }

	for i := 0; i < 5; i++ {
		if err := cb.Call(permanent); err == nil {
			t.Fatal("expected the underlying error to still be returned")
		}
	}

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed: a permanent error should never trip the breaker", cb.State())
	}
}

func TestCircuitBreakerClosesAfterSuccessesInHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Millisecond, SuccessThreshold: 1})
	cb.Call(func() error { return syscall.EBUSY })
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want StateOpen", cb.State())
	}

	time.Sleep(5 * time.Millisecond)

	if err := cb.Call(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed", cb.State())
	}
}

func TestBreakerRegistryIsolatesBreakersPerKey(t *testing.T) {
	reg := NewBreakerRegistry(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour, SuccessThreshold: 1})
	failing := func() error { return syscall.EBUSY }

	reg.Call("descriptor-a", failing)
	if reg.State("descriptor-a") != StateOpen {
		t.Fatalf("descriptor-a state = %v, want StateOpen", reg.State("descriptor-a"))
	}
	if reg.State("descriptor-b") != StateClosed {
		t.Fatalf("descriptor-b state = %v, want StateClosed (untouched)", reg.State("descriptor-b"))
	}

	if err := reg.Call("descriptor-b", func() error { return nil }); err != nil {
		t.Fatalf("descriptor-b call: %v", err)
	}
}

func TestBreakerRegistryStateForUnknownKey(t *testing.T) {
	reg := NewBreakerRegistry(DefaultCircuitBreakerConfig())
	if reg.State("nobody") != StateClosed {
		t.Fatal("expected StateClosed for an unused key")
	}
}
