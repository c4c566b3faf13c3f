package sysmetrics

// TickType indexes a Ticks vector.
type TickType int

const (
	User TickType = iota
	Nice
	System
	Idle
	IOWait
	IRQ
	SoftIRQ
	Steal

	numTickTypes
)

var tickTypeNames = [numTickTypes]string{"user", "nice", "system", "idle", "iowait", "irq", "softirq", "steal"}

// String returns the lower-case name of the tick type.
func (t TickType) String() string {
	if t < 0 || t >= numTickTypes {
		return "unknown"
	}
	return tickTypeNames[t]
}

// Ticks is a snapshot of the system-wide CPU time counters, in milliseconds
// since boot. Every element is monotonically non-decreasing while the host
// stays up.
type Ticks [numTickTypes]uint64

// Total returns the sum of all counters.
func (t Ticks) Total() uint64 {
	var sum uint64
	for _, v := range t {
		sum += v
	}
	return sum
}

// IdleTotal returns the time spent not doing work (idle plus I/O wait).
func (t Ticks) IdleTotal() uint64 {
	return t[Idle] + t[IOWait]
}

// LoadEstimator turns successive Ticks readings into a load percentage.
//
// It keeps the previous reading as its baseline. The zero value starts with
// an all-zero baseline, so the first estimate is the average load since boot.
// A LoadEstimator is not safe for concurrent use.
type LoadEstimator struct {
	prev Ticks
}

// Estimate returns the CPU load in [0, 100] over the interval between the
// previous reading and current, then makes current the new baseline.
//
// When no time has elapsed, or the counters went backwards (host reboot or
// counter wrap), it returns 0.
func (e *LoadEstimator) Estimate(current Ticks) float64 {
	prev := e.prev
	e.prev = current

	total, prevTotal := current.Total(), prev.Total()
	if total <= prevTotal {
		return 0
	}

	idle, prevIdle := current.IdleTotal(), prev.IdleTotal()
	if idle < prevIdle {
		return 0
	}

	deltaTotal := total - prevTotal
	deltaIdle := idle - prevIdle

	load := (1.0 - float64(deltaIdle)/float64(deltaTotal)) * 100.0
	if load < 0 {
		load = 0
	}
	if load > 100 {
		load = 100
	}
	return load
}
