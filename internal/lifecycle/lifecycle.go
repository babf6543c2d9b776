// Package lifecycle holds the process drain state read by /health.
package lifecycle

import (
	"sync/atomic"
	"time"
)

// drainStarted is nil while serving and holds the drain start time once shutdown begins.
var drainStarted atomic.Pointer[time.Time]

// BeginDrain marks the process as shutting down at the given time. Only the first call
// records a start time; later calls are no-ops.
func BeginDrain(at time.Time) {
	drainStarted.CompareAndSwap(nil, &at)
}

// IsShuttingDown reports whether BeginDrain has been called.
func IsShuttingDown() bool {
	return drainStarted.Load() != nil
}

// DrainingFor returns how long the process has been draining at now, or 0 while serving.
func DrainingFor(now time.Time) time.Duration {
	started := drainStarted.Load()
	if started == nil {
		return 0
	}
	return now.Sub(*started)
}

// Reset returns to the serving state. Tests use it to undo BeginDrain.
func Reset() {
	drainStarted.Store(nil)
}
