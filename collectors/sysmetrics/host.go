package sysmetrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
)

// HostProvider reads the local host through gopsutil.
type HostProvider struct {
	logger *slog.Logger
}

// NewHostProvider creates a HostProvider.
// If logger is nil, a no-op logger is used.
func NewHostProvider(logger *slog.Logger) *HostProvider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HostProvider{logger: logger}
}

// CPUTicks returns the aggregate CPU times converted to milliseconds.
func (h *HostProvider) CPUTicks(ctx context.Context) (Ticks, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return Ticks{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return Ticks{}, errors.New("cpu times: no aggregate entry")
	}

	t := times[0]
	var ticks Ticks
	ticks[User] = secondsToMillis(t.User)
	ticks[Nice] = secondsToMillis(t.Nice)
	ticks[System] = secondsToMillis(t.System)
	ticks[Idle] = secondsToMillis(t.Idle)
	ticks[IOWait] = secondsToMillis(t.Iowait)
	ticks[IRQ] = secondsToMillis(t.Irq)
	ticks[SoftIRQ] = secondsToMillis(t.Softirq)
	ticks[Steal] = secondsToMillis(t.Steal)
	return ticks, nil
}

// Memory returns used and total physical memory. Used is computed as
// total minus available, so reclaimable cache does not count as used.
func (h *HostProvider) Memory(ctx context.Context) (collectors.MemoryMetrics, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return collectors.MemoryMetrics{}, fmt.Errorf("virtual memory: %w", err)
	}

	used := vm.Used
	if vm.Available <= vm.Total {
		used = vm.Total - vm.Available
	}
	return collectors.MemoryMetrics{UsedBytes: used, TotalBytes: vm.Total}, nil
}

// FileStores lists physical partitions with their usage. Partitions whose
// usage cannot be read (unmounted media, permission denied) are skipped.
func (h *HostProvider) FileStores(ctx context.Context) ([]FileStore, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("disk partitions: %w", err)
	}

	stores := make([]FileStore, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			h.logger.Debug("skipping file store", "mountpoint", p.Mountpoint, "error", err)
			continue
		}
		stores = append(stores, FileStore{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			TotalBytes: usage.Total,
			UsedBytes:  usage.Used,
		})
	}
	return stores, nil
}

// Processes enumerates running processes. A process that exits between
// enumeration and inspection is dropped; unreadable CPU or memory figures
// for a live process are reported as zero.
func (h *HostProvider) Processes(ctx context.Context) ([]RawProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	out := make([]RawProcess, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		raw := RawProcess{PID: p.Pid, Name: name}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			raw.CPUPercent = pct
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			raw.RSSBytes = mi.RSS
		}
		out = append(out, raw)
	}
	return out, nil
}

func secondsToMillis(s float64) uint64 {
	if s <= 0 {
		return 0
	}
	return uint64(s * 1000)
}

// Compile-time interface compliance check.
var _ Provider = (*HostProvider)(nil)
