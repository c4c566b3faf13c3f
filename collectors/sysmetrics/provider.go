// Package sysmetrics samples local host metrics for sysinsight. The Collector
// reads raw counters from a Provider, turns CPU ticks into a load percentage,
// ranks processes and assembles a collectors.SystemSnapshot.
package sysmetrics

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
)

// ErrSensorRead is the sentinel wrapped by every SensorError.
var ErrSensorRead = errors.New("sensor read failed")

// SensorError reports which raw read failed during a sample.
type SensorError struct {
	Sensor string // "cpu", "memory", "disk" or "processes"
	Err    error
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sysmetrics: read %s: %v", e.Sensor, e.Err)
}

// Unwrap exposes both ErrSensorRead and the underlying cause to errors.Is/As.
func (e *SensorError) Unwrap() []error {
	return []error{ErrSensorRead, e.Err}
}

// RawProcess is one process as enumerated by a Provider, before ranking.
type RawProcess struct {
	PID  int32
	Name string

	// CPUPercent is CPU time divided by wall time since the process started,
	// times 100.
	CPUPercent float64

	// RSSBytes is the resident set size.
	RSSBytes uint64
}

// FileStore is one mounted filesystem with its capacity.
type FileStore struct {
	Device     string
	Mountpoint string
	TotalBytes uint64
	UsedBytes  uint64
}

// Provider is the OS-level source of raw readings. Every method is a
// synchronous and possibly slow read; none of them keep state between calls.
type Provider interface {
	// CPUTicks returns the system-wide CPU time counters.
	CPUTicks(ctx context.Context) (Ticks, error)

	// Memory returns physical memory usage.
	Memory(ctx context.Context) (collectors.MemoryMetrics, error)

	// FileStores lists mounted filesystems with usage.
	FileStores(ctx context.Context) ([]FileStore, error)

	// Processes enumerates running processes.
	Processes(ctx context.Context) ([]RawProcess, error)
}
