package sysmetrics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/internal/format"
)

const (
	// collectorName is the unique identifier for this collector.
	collectorName = "sysmetrics"

	// DefaultTopN is the number of processes kept in a snapshot.
	DefaultTopN = 10
)

// DefaultDiskMount returns the mount treated as the primary disk: the system
// drive on Windows, the root filesystem elsewhere.
func DefaultDiskMount() string {
	if runtime.GOOS == "windows" {
		return "C:"
	}
	return "/"
}

// Option configures a Collector.
type Option func(*Collector)

// WithTopN sets how many processes a snapshot keeps.
func WithTopN(n int) Option {
	return func(c *Collector) { c.topN = n }
}

// WithDiskMount sets the mount point reported as the primary disk.
func WithDiskMount(mount string) Option {
	return func(c *Collector) {
		if mount != "" {
			c.diskMount = mount
		}
	}
}

// WithLogger sets the collector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Collector implements collectors.Sampler for the local host.
//
// Each Sample performs every raw read first and only then touches the load
// estimator, so a failed read leaves the CPU baseline where it was and the
// next successful sample measures load over the full gap.
type Collector struct {
	provider  Provider
	logger    *slog.Logger
	estimator LoadEstimator
	topN      int
	diskMount string

	// now is overridable for tests.
	now func() time.Time
}

// NewCollector creates a Collector reading from provider.
func NewCollector(provider Provider, opts ...Option) *Collector {
	c := &Collector{
		provider:  provider,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		topN:      DefaultTopN,
		diskMount: DefaultDiskMount(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string {
	return collectorName
}

// Sample reads all sensors and assembles a snapshot. On any read failure it
// returns a *SensorError and no snapshot.
func (c *Collector) Sample(ctx context.Context) (collectors.SystemSnapshot, error) {
	// Check for context cancellation before starting.
	select {
	case <-ctx.Done():
		return collectors.SystemSnapshot{}, ctx.Err()
	default:
	}

	ticks, err := c.provider.CPUTicks(ctx)
	if err != nil {
		return collectors.SystemSnapshot{}, &SensorError{Sensor: "cpu", Err: err}
	}

	memory, err := c.provider.Memory(ctx)
	if err != nil {
		return collectors.SystemSnapshot{}, &SensorError{Sensor: "memory", Err: err}
	}

	stores, err := c.provider.FileStores(ctx)
	if err != nil {
		return collectors.SystemSnapshot{}, &SensorError{Sensor: "disk", Err: err}
	}

	procs, err := c.provider.Processes(ctx)
	if err != nil {
		return collectors.SystemSnapshot{}, &SensorError{Sensor: "processes", Err: err}
	}

	cpu := collectors.CPUMetrics{Load: c.estimator.Estimate(ticks)}
	disk := selectDisk(stores, c.diskMount)
	top := toRecords(RankProcesses(procs, c.topN))

	snap := collectors.Assemble(c.now(), cpu, memory, disk, top, len(procs))

	c.logger.Debug("sysmetrics collected",
		"cpu", fmt.Sprintf("%.1f%%", cpu.Load),
		"mem", format.Bytes(memory.UsedBytes)+" / "+format.Bytes(memory.TotalBytes),
		"disk", disk.DriveLabel,
		"processes", len(procs),
	)

	return snap, nil
}

// selectDisk picks the store mounted exactly at mount. A drive letter such
// as "C:" also matches the first mount point starting with it ("C:\"),
// case-insensitively. When nothing matches the result is labelled "N/A"
// with zero sizes.
func selectDisk(stores []FileStore, mount string) collectors.DiskMetrics {
	for _, s := range stores {
		if s.Mountpoint == mount {
			return diskMetrics(s)
		}
	}
	if isDriveLetter(mount) {
		for _, s := range stores {
			if len(s.Mountpoint) >= 2 && strings.EqualFold(s.Mountpoint[:2], mount) {
				return diskMetrics(s)
			}
		}
	}
	return collectors.DiskMetrics{DriveLabel: "N/A"}
}

func isDriveLetter(mount string) bool {
	if len(mount) != 2 || mount[1] != ':' {
		return false
	}
	c := mount[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func diskMetrics(s FileStore) collectors.DiskMetrics {
	label := s.Device
	if label == "" {
		label = s.Mountpoint
	}
	return collectors.DiskMetrics{
		DriveLabel: label,
		UsedBytes:  s.UsedBytes,
		TotalBytes: s.TotalBytes,
	}
}

func toRecords(procs []RawProcess) []collectors.ProcessRecord {
	out := make([]collectors.ProcessRecord, len(procs))
	for i, p := range procs {
		out[i] = collectors.ProcessRecord{
			PID:         p.PID,
			Name:        p.Name,
			CPUPercent:  p.CPUPercent,
			MemoryLabel: format.Bytes(p.RSSBytes),
		}
	}
	return out
}

// Compile-time interface compliance check.
var _ collectors.Sampler = (*Collector)(nil)
