package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces operations evenly at a fixed per-minute rate. It is
// safe for concurrent use; waiting callers are serialized in arrival order
// of their lock acquisition.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time // earliest time the next operation may proceed
}

// NewRateLimiter creates a RateLimiter that allows perMinute operations per
// minute. A perMinute of zero or less disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{}
	if perMinute > 0 {
		rl.interval = time.Minute / time.Duration(perMinute)
	}
	return rl
}

// Wait blocks until the operation may proceed or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.interval == 0 {
		return nil
	}

	rl.mu.Lock()
	now := time.Now()
	at := rl.next
	if at.Before(now) {
		at = now
	}
	rl.next = at.Add(rl.interval)
	rl.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
