// Package throttle enforces a minimum spacing between calls to an external
// provider. Each client owns its own Throttle, so tests and parallel
// instances never share state.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle lets one call through per interval. It is safe for concurrent use;
// concurrent callers are queued in arrival order by the underlying limiter.
type Throttle struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New returns a Throttle that spaces calls at least interval apart.
// A non-positive interval disables throttling.
func New(interval time.Duration) *Throttle {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next call may proceed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Interval returns the configured minimum spacing.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}
