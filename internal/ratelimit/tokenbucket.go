// Package ratelimit throttles batch submission of decode/encode jobs —
// per batch key rather than per SMPP system_id — and weights that
// throttle by how expensive the job actually is: decoding a deeply
// nested PDU costs more of the budget than decoding a bare integer
// field, via descriptor.Complexity.
package ratelimit

import (
	"sync"
	"time"

	"github.com/oarkflow/smpp-codec/internal/slidingwindow"
	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// TokenBucket implements a token bucket rate limiter.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a token bucket starting at full capacity.
func NewTokenBucket(capacity int64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// AllowN consumes n tokens if all are available.
func (tb *TokenBucket) AllowN(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int64(float64(elapsed.Nanoseconds()) * tb.refillRate / float64(time.Second.Nanoseconds()))
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}

// Tokens reports the current token count, after refilling.
func (tb *TokenBucket) Tokens() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// Capacity returns the bucket's maximum token count.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// Limiter manages one TokenBucket per key (a batch run ID, a caller
// identity, whatever the owning component wants to throttle
// independently).
type Limiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
}

// NewLimiter builds an empty Limiter.
func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*TokenBucket)}
}

// Allow admits one request for key against a rateLimit tokens-per-minute
// budget, creating key's bucket on first use.
func (rl *Limiter) Allow(key string, rateLimit int) bool {
	return rl.bucketFor(key, rateLimit).Allow()
}

// AllowN admits n requests for key against a rateLimit tokens-per-minute
// budget, creating key's bucket on first use.
func (rl *Limiter) AllowN(key string, n int64, rateLimit int) bool {
	return rl.bucketFor(key, rateLimit).AllowN(n)
}

// AllowDescriptor admits one decode/encode against d for key, charging
// descriptor.Complexity(d) tokens instead of a flat 1 — a batch of
// submit_sm jobs, with their long run of mandatory body fields, drains
// key's budget faster than the same count of enquire_link jobs, which
// have no body at all.
func (rl *Limiter) AllowDescriptor(key string, d descriptor.Descriptor, rateLimit int) bool {
	cost := int64(descriptor.Complexity(d))
	return rl.bucketFor(key, rateLimit).AllowN(cost)
}

func (rl *Limiter) bucketFor(key string, rateLimit int) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rateLimit) / 60.0
		bucket = NewTokenBucket(int64(rateLimit), refillRate)
		rl.buckets[key] = bucket
	}
	return bucket
}

// RemainingTokens reports key's current token count, or 0 if key has no
// bucket yet.
func (rl *Limiter) RemainingTokens(key string) int64 {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if bucket, exists := rl.buckets[key]; exists {
		return bucket.Tokens()
	}
	return 0
}

// Cleanup removes buckets that are full and have been idle past maxAge,
// to bound memory in a long-running CLI process with many distinct keys.
func (rl *Limiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, bucket := range rl.buckets {
		if bucket.Tokens() == bucket.Capacity() && now.Sub(bucket.lastRefill) > maxAge {
			delete(rl.buckets, key)
		}
	}
}

// SlidingWindowLimiter admits at most limit requests per window, per
// key, built on slidingwindow.Window — the same trailing-window
// admission primitive internal/flowcontrol uses to bound outstanding
// jobs and pkg/codecevents uses to suppress repeat failure events.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*slidingwindow.Window
	size    time.Duration
	limit   int
}

// NewSlidingWindowLimiter builds a SlidingWindowLimiter.
func NewSlidingWindowLimiter(window time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{windows: make(map[string]*slidingwindow.Window), size: window, limit: limit}
}

func (swl *SlidingWindowLimiter) windowFor(key string) *slidingwindow.Window {
	swl.mu.Lock()
	defer swl.mu.Unlock()
	w, exists := swl.windows[key]
	if !exists {
		w = slidingwindow.New(swl.size)
		swl.windows[key] = w
	}
	return w
}

// Allow admits one request for key if fewer than limit have landed in
// the trailing window.
func (swl *SlidingWindowLimiter) Allow(key string) bool {
	return swl.windowFor(key).TryAdmit(swl.limit)
}

// RemainingRequests reports how many more requests key may make in the
// current window.
func (swl *SlidingWindowLimiter) RemainingRequests(key string) int {
	return swl.windowFor(key).Remaining(swl.limit)
}
