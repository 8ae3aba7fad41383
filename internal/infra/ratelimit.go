package infra

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket: up to burst requests at once, then one
// more every interval.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	burst    int
	interval time.Duration
	last     time.Time // time the bucket was last credited
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing burst requests and refilling
// one token per interval. A non-positive interval never throttles.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		tokens:   burst,
		burst:    burst,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is cancelled. It sleeps
// until the next refill rather than polling. A nil limiter never blocks.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}
	for {
		delay := rl.reserve()
		if delay <= 0 {
			return nil
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until the next
// token is credited.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.interval <= 0 {
		return 0
	}
	now := rl.now()
	if elapsed := now.Sub(rl.last); elapsed >= rl.interval {
		periods := int(elapsed / rl.interval)
		rl.tokens = min(rl.tokens+periods, rl.burst)
		rl.last = rl.last.Add(time.Duration(periods) * rl.interval)
		if rl.tokens == rl.burst {
			rl.last = now
		}
	}
	if rl.tokens > 0 {
		rl.tokens--
		return 0
	}
	return rl.last.Add(rl.interval).Sub(now)
}
