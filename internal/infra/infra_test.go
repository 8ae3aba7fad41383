package infra

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	c := NewMemoryStore(time.Second)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(ctx, "key1")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != "value1" {
		t.Fatalf("got %q, want value1", v)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	c := NewMemoryStore(time.Second)
	_, ok, err := c.Get(context.Background(), "nonexistent")
	if ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	c := NewMemoryStore(time.Hour)
	ctx := context.Background()
	buf := []byte("original")
	c.Set(ctx, "k", buf)
	buf[0] = 'X'

	v, _, _ := c.Get(ctx, "k")
	if string(v) != "original" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	c := NewMemoryStore(time.Millisecond)
	ctx := context.Background()
	c.Set(ctx, "key", []byte("val"))

	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted on Get: %d entries", c.Len())
	}
}

func TestMemoryStoreBackgroundSweep(t *testing.T) {
	c := NewMemoryStore(time.Millisecond)
	defer c.Close()
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k))
	}

	deadline := time.Now().Add(MinCleanupInterval + 2*time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expired entries never swept: %d left", c.Len())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	c := NewMemoryStore(time.Minute)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("store should remain usable after Close")
	}
}

func TestMemoryStoreNoTTL(t *testing.T) {
	c := NewMemoryStore(0)
	ctx := context.Background()
	c.Set(ctx, "key", []byte("val"))

	time.Sleep(2 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Fatal("entries without TTL should not expire")
	}
}

func TestMemoryStoreCleanupAndFlush(t *testing.T) {
	c := NewMemoryStore(time.Millisecond)
	ctx := context.Background()
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	time.Sleep(5 * time.Millisecond)
	c.Cleanup()
	if c.Len() != 0 {
		t.Errorf("Cleanup: got %d entries, want 0", c.Len())
	}

	c.Set(ctx, "c", []byte("3"))
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Flush: got %d entries, want 0", c.Len())
	}
}

func TestNewRedisStoreEmptyURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "", time.Minute); err == nil {
		t.Error("expected error for empty redis url")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait #%d: %v", i, err)
		}
	}
}

func TestRateLimiterCancelledContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	rl.Wait(ctx) // drain the only token

	cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRateLimiterNil(t *testing.T) {
	var rl *RateLimiter
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait: %v", err)
	}
}

func TestRateLimiterReserveReportsRefillDelay(t *testing.T) {
	start := time.Unix(1700000000, 0)
	clock := start
	rl := NewRateLimiter(2, 100*time.Millisecond)
	rl.last, rl.now = start, func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		if d := rl.reserve(); d != 0 {
			t.Fatalf("burst token %d: delay %v, want 0", i, d)
		}
	}

	clock = start.Add(30 * time.Millisecond)
	if d := rl.reserve(); d != 70*time.Millisecond {
		t.Errorf("empty bucket: delay %v, want 70ms", d)
	}

	clock = start.Add(100 * time.Millisecond)
	if d := rl.reserve(); d != 0 {
		t.Errorf("after one interval: delay %v, want 0", d)
	}
	if d := rl.reserve(); d != 100*time.Millisecond {
		t.Errorf("drained again: delay %v, want 100ms", d)
	}
}

func TestRateLimiterWaitSleepsUntilRefill(t *testing.T) {
	const interval = 50 * time.Millisecond
	rl := NewRateLimiter(1, interval)
	ctx := context.Background()
	rl.Wait(ctx)

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < interval-5*time.Millisecond || elapsed > 10*interval {
		t.Errorf("second Wait took %v, want about %v", elapsed, interval)
	}
}

func TestRateLimiterNoInterval(t *testing.T) {
	rl := NewRateLimiter(1, 0)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if d := rl.reserve(); d != 0 {
			t.Fatalf("call %d throttled for %v", i, d)
		}
	}
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}
