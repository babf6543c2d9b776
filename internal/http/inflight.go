package http

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// InFlightTracker counts requests currently being served so shutdown can drain them.
type InFlightTracker struct {
	count atomic.Int64
}

// Begin counts one request as in flight. The returned func ends it; extra calls are no-ops.
func (t *InFlightTracker) Begin() (done func()) {
	t.count.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { t.count.Add(-1) })
	}
}

// Count returns the current in-flight count.
func (t *InFlightTracker) Count() int64 {
	return t.count.Load()
}

// WaitForZero blocks until nothing is in flight or ctx ends, polling on clock every
// checkInterval.
func (t *InFlightTracker) WaitForZero(ctx context.Context, clock clockwork.Clock, checkInterval time.Duration) error {
	if t.Count() == 0 {
		return nil
	}
	ticker := clock.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if t.Count() == 0 {
				return nil
			}
		}
	}
}

// globalInFlightTracker is fed by MetricsMiddleware for every routed request.
var globalInFlightTracker = &InFlightTracker{}

// InFlightCount returns the current number of in-flight requests.
func InFlightCount() int64 {
	return globalInFlightTracker.Count()
}

// WaitForInFlight blocks until in-flight requests reach zero or ctx is done.
func WaitForInFlight(ctx context.Context, clock clockwork.Clock, checkInterval time.Duration) error {
	return globalInFlightTracker.WaitForZero(ctx, clock, checkInterval)
}
