package collectors

import (
	"encoding/json"
	"time"
)

// CPUMetrics holds the overall CPU load for one sample.
type CPUMetrics struct {
	// Load is the CPU load percentage (0-100) since the previous sample.
	Load float64 `json:"load"`
}

// MemoryMetrics holds physical memory usage in bytes.
type MemoryMetrics struct {
	UsedBytes  uint64 `json:"used_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

// DiskMetrics holds usage of the primary disk.
// A TotalBytes of zero means the configured disk was not found.
type DiskMetrics struct {
	// DriveLabel identifies the device, e.g. "C:" or "/dev/nvme0n1p2".
	DriveLabel string `json:"drive_label"`
	UsedBytes  uint64 `json:"used_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

// ProcessRecord is one row of the top-process table.
type ProcessRecord struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`

	// CPUPercent is the cumulative CPU usage since process start. It is not
	// capped at 100: a process busy on several cores reports more.
	CPUPercent float64 `json:"cpu_percent"`

	// MemoryLabel is the resident set size, formatted at collection time.
	MemoryLabel string `json:"memory"`
}

// SystemSnapshot is one internally consistent set of readings taken during a
// single poll tick. It is immutable: build it with Assemble and read it via
// the accessor methods.
type SystemSnapshot struct {
	takenAt        time.Time
	cpu            CPUMetrics
	memory         MemoryMetrics
	disk           DiskMetrics
	topProcesses   []ProcessRecord
	totalProcesses int
}

// Assemble combines already-collected readings into a SystemSnapshot.
// It performs no validation: zero totals and empty process lists are passed
// through unchanged. The process slice is copied, so later changes to procs
// do not affect the snapshot.
func Assemble(at time.Time, cpu CPUMetrics, mem MemoryMetrics, disk DiskMetrics, procs []ProcessRecord, totalProcesses int) SystemSnapshot {
	var top []ProcessRecord
	if len(procs) > 0 {
		top = make([]ProcessRecord, len(procs))
		copy(top, procs)
	}

	return SystemSnapshot{
		takenAt:        at,
		cpu:            cpu,
		memory:         mem,
		disk:           disk,
		topProcesses:   top,
		totalProcesses: totalProcesses,
	}
}

// TakenAt returns when the readings were taken.
func (s SystemSnapshot) TakenAt() time.Time { return s.takenAt }

// CPU returns the CPU reading.
func (s SystemSnapshot) CPU() CPUMetrics { return s.cpu }

// Memory returns the memory reading.
func (s SystemSnapshot) Memory() MemoryMetrics { return s.memory }

// Disk returns the primary disk reading.
func (s SystemSnapshot) Disk() DiskMetrics { return s.disk }

// TopProcesses returns a copy of the ranked process list, highest CPU first.
func (s SystemSnapshot) TopProcesses() []ProcessRecord {
	out := make([]ProcessRecord, len(s.topProcesses))
	copy(out, s.topProcesses)
	return out
}

// TopProcess returns the highest-CPU process, if any.
func (s SystemSnapshot) TopProcess() (ProcessRecord, bool) {
	if len(s.topProcesses) == 0 {
		return ProcessRecord{}, false
	}
	return s.topProcesses[0], true
}

// ProcessCount returns the number of processes enumerated during the sample,
// before ranking truncated the list.
func (s SystemSnapshot) ProcessCount() int { return s.totalProcesses }

// snapshotJSON is the wire shape of SystemSnapshot.
type snapshotJSON struct {
	TakenAt        time.Time       `json:"taken_at"`
	CPU            CPUMetrics      `json:"cpu"`
	Memory         MemoryMetrics   `json:"memory"`
	Disk           DiskMetrics     `json:"disk"`
	TopProcesses   []ProcessRecord `json:"top_processes"`
	TotalProcesses int             `json:"total_processes"`
}

// MarshalJSON implements json.Marshaler.
func (s SystemSnapshot) MarshalJSON() ([]byte, error) {
	top := s.topProcesses
	if top == nil {
		top = []ProcessRecord{}
	}
	return json.Marshal(snapshotJSON{
		TakenAt:        s.takenAt,
		CPU:            s.cpu,
		Memory:         s.memory,
		Disk:           s.disk,
		TopProcesses:   top,
		TotalProcesses: s.totalProcesses,
	})
}
