package ratelimit

import (
	"testing"
	"time"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

func TestTokenBucketAllowConsumesCapacity(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("expected token %d to be allowed", i)
		}
	}
	if tb.Allow() {
		t.Fatal("expected bucket to be exhausted")
	}
}

func TestTokenBucketAllowNRejectsPartial(t *testing.T) {
	tb := NewTokenBucket(5, 0)
	if !tb.AllowN(5) {
		t.Fatal("expected full capacity to be allowed")
	}
	if tb.AllowN(1) {
		t.Fatal("expected bucket to reject further requests")
	}
}

func TestTokenBucketRefillsOverTime(t *testing.T) {
	tb := NewTokenBucket(10, 1000)
	tb.AllowN(10)
	if tb.Tokens() != 0 {
		t.Fatalf("expected 0 tokens immediately after draining, got %d", tb.Tokens())
	}
	time.Sleep(15 * time.Millisecond)
	if tb.Tokens() <= 0 {
		t.Fatal("expected tokens to refill after elapsed time")
	}
}

func TestLimiterIsolatesBucketsPerKey(t *testing.T) {
	l := NewLimiter()
	for i := 0; i < 2; i++ {
		if !l.Allow("alice", 2) {
			t.Fatalf("expected alice request %d to be allowed", i)
		}
	}
	if l.Allow("alice", 2) {
		t.Fatal("expected alice to be rate limited")
	}
	if !l.Allow("bob", 2) {
		t.Fatal("expected bob to have an independent bucket")
	}
}

func TestLimiterRemainingTokensForUnknownKey(t *testing.T) {
	l := NewLimiter()
	if got := l.RemainingTokens("nobody"); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestSlidingWindowLimiterAdmitsUpToLimit(t *testing.T) {
	swl := NewSlidingWindowLimiter(time.Minute, 2)
	if !swl.Allow("batch-1") || !swl.Allow("batch-1") {
		t.Fatal("expected first two requests to be admitted")
	}
	if swl.Allow("batch-1") {
		t.Fatal("expected third request to be rejected")
	}
	if got := swl.RemainingRequests("batch-1"); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestAllowDescriptorChargesComplexity(t *testing.T) {
	l := NewLimiter()
	composite := descriptor.NewNamedComposite("pdu",
		descriptor.NewInteger(4, 0, 1<<32-1),
		descriptor.NewInteger(4, 0, 1<<32-1),
	)
	// composite complexity is 3, so a budget of 5 admits one but not two.
	if !l.AllowDescriptor("batch", composite, 5) {
		t.Fatal("expected first complex job to be admitted")
	}
	if l.AllowDescriptor("batch", composite, 5) {
		t.Fatal("expected second complex job to exceed the remaining budget")
	}

	simple := descriptor.NewInteger(1, 0, 255)
	l2 := NewLimiter()
	for i := 0; i < 5; i++ {
		if !l2.AllowDescriptor("batch", simple, 5) {
			t.Fatalf("expected simple job %d to be admitted under the same budget", i)
		}
	}
}

func TestSlidingWindowLimiterExpiresOldEntries(t *testing.T) {
	swl := NewSlidingWindowLimiter(10*time.Millisecond, 1)
	if !swl.Allow("batch-2") {
		t.Fatal("expected first request to be admitted")
	}
	time.Sleep(20 * time.Millisecond)
	if !swl.Allow("batch-2") {
		t.Fatal("expected request to be admitted again after window expired")
	}
}
