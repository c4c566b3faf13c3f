// Package collectors defines the snapshot data model shared by every part of
// sysinsight, the Sampler contract implemented by metric sources, and the
// Scheduler that drives a Sampler at a fixed cadence.
package collectors

import "context"

// Sampler is the interface a metrics source implements to feed the Scheduler.
// A Sampler reads every sensor once and returns a complete snapshot, or an
// error if any reading failed. Partial snapshots are never returned.
//
// Implementations may hold state across calls (the CPU tick baseline, for
// example) and are not required to be safe for concurrent use; the Scheduler
// calls Sample from a single goroutine.
type Sampler interface {
	// Name returns a short identifier used in log output.
	Name() string

	// Sample performs one round of sensor reads and assembles a snapshot.
	// The context should be respected for cancellation of blocking reads.
	Sample(ctx context.Context) (SystemSnapshot, error)
}
