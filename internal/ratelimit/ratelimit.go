package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/venturescout/vc-sourcer/internal/utils"
)

// Limiter bounds the request rate to any single upstream source with a
// sliding window: at most budget acquisitions may complete within any rolling
// window. Acquire blocks until a slot frees up; it never rejects.
type Limiter struct {
	budget int
	window time.Duration

	// now and wait are swappable for tests.
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	sources map[string][]time.Time
}

// New validates the budget at construction time. A non-positive budget or
// window is a configuration error and must fail at startup, not at call time.
func New(budget int, window time.Duration) (*Limiter, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("rate limit budget must be positive, got %d", budget)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", window)
	}

	return &Limiter{
		budget:  budget,
		window:  window,
		now:     time.Now,
		wait:    utils.WaitFor,
		sources: make(map[string][]time.Time),
	}, nil
}

// Acquire blocks until a request slot is available for the source, then
// records the acquisition. It returns early only when the context is
// canceled.
func (l *Limiter) Acquire(ctx context.Context, source string) error {
	for {
		l.mu.Lock()

		now := l.now()
		recent := l.prune(source, now)

		if len(recent) < l.budget {
			l.sources[source] = append(recent, now)
			l.mu.Unlock()
			return nil
		}

		// Window is full; sleep until the oldest acquisition exits it.
		wakeAt := recent[0].Add(l.window)
		l.mu.Unlock()

		if err := l.wait(ctx, wakeAt.Sub(now)); err != nil {
			return err
		}
	}
}

// Pending returns the number of acquisitions still inside the window for the
// source. Used for diagnostics and tests.
func (l *Limiter) Pending(source string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(source, l.now()))
}

// prune drops timestamps that have left the window. Caller holds the lock.
func (l *Limiter) prune(source string, now time.Time) []time.Time {
	recent := l.sources[source]
	cutoff := now.Add(-l.window)

	kept := recent[:0]
	for _, ts := range recent {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.sources[source] = kept
	return kept
}
