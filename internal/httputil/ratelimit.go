// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// NCBI E-utilities rate ceilings: 3 requests/second without an API key,
// 10 requests/second with one.
const (
	DefaultInterval = 340 * time.Millisecond
	KeyedInterval   = 100 * time.Millisecond

	// maxJitter is the upper bound on the random delay added to each wait
	// so concurrent workers do not synchronize into bursts.
	maxJitter = 100 * time.Millisecond
)

// IntervalFor returns the minimum inter-call interval for the given API
// key. A non-empty key gets the documented higher NCBI rate.
func IntervalFor(apiKey string) time.Duration {
	if apiKey != "" {
		return KeyedInterval
	}
	return DefaultInterval
}

// Limiter enforces a minimum interval between outbound calls across all
// concurrent workers. The next-slot timestamp is owned by the limiter and
// reserved under a mutex, so two workers can never both observe a stale
// timestamp and proceed without waiting.
type Limiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

// NewLimiter returns a limiter with the given minimum interval. A zero or
// negative interval disables waiting.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Interval returns the configured minimum inter-call interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the caller's reserved send slot arrives. Slots are at
// least the configured interval apart, plus 0-100ms of jitter. The slot is
// claimed before sleeping, so the wait itself happens outside the lock.
// Returns ctx.Err() if the context is cancelled while waiting; the slot
// stays consumed either way.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	} else {
		slot = slot.Add(time.Duration(rand.Int63n(int64(maxJitter))))
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	rateLimitWaitSeconds.Observe(wait.Seconds())

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
