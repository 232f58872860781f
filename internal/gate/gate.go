// Package gate implements the shared admission limiter that caps how many
// fetches may be in flight at once, regardless of how many logical tasks are
// scheduled against it.
package gate

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const defaultCapacity = 40

// Gate is a fixed-capacity counting limiter. At most Capacity() holders exist
// at any moment; Acquire blocks further callers until a slot is released.
// Wakeup order among blocked callers is unspecified. An optional politeness
// limiter additionally spaces out admissions at a fixed rate; it never reacts
// to response codes.
type Gate struct {
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	capacity int
}

// Option configures a Gate.
type Option func(*Gate)

// WithRate adds a fixed requests-per-second politeness limit on top of the
// concurrency cap. rps <= 0 disables it.
func WithRate(rps float64, burst int) Option {
	return func(g *Gate) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New builds a Gate admitting at most capacity concurrent holders. A
// non-positive capacity falls back to the default of 40.
func New(capacity int, opts ...Option) *Gate {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	g := &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Capacity returns the configured concurrency cap.
func (g *Gate) Capacity() int {
	return g.capacity
}

// Acquire blocks until a slot is free or ctx finishes. On success the caller
// owns one slot and must call Release exactly once.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire fetch slot: %w", err)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.sem.Release(1)
			return fmt.Errorf("politeness wait: %w", err)
		}
	}
	return nil
}

// Release frees a slot obtained by Acquire.
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Do runs fn while holding one slot. The slot is released on every exit path,
// including panics inside fn.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}
