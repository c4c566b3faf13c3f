package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
)

func testSnapshot(disk collectors.DiskMetrics, procs []collectors.ProcessRecord) collectors.SystemSnapshot {
	return collectors.Assemble(
		time.Date(2026, 3, 1, 14, 30, 5, 0, time.UTC),
		collectors.CPUMetrics{Load: 87.3},
		collectors.MemoryMetrics{UsedBytes: 12 << 30, TotalBytes: 16 << 30},
		disk,
		procs,
		231,
	)
}

func TestRender(t *testing.T) {
	snap := testSnapshot(
		collectors.DiskMetrics{DriveLabel: "C:", UsedBytes: 450 << 30, TotalBytes: 500 << 30},
		[]collectors.ProcessRecord{{PID: 4242, Name: "chrome", CPUPercent: 37.5, MemoryLabel: "512.0 MB"}},
	)
	host := sysmetrics.HostInfo{Hostname: "devbox", OS: "Windows 11", CPUModel: "Ryzen 7"}

	out := Render(snap, host, 80)
	for _, want := range []string{
		"System snapshot @ devbox",
		"2026-03-01 14:30:05",
		"Windows 11",
		"Ryzen 7",
		"87.3%",
		"12.0 GB / 16.0 GB",
		"450.0 GB / 500.0 GB (C:)",
		"231",
		"chrome",
		"512.0 MB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 80 {
			t.Errorf("line wider than 80 cells (%d): %q", w, line)
		}
	}
}

func TestRender_MissingDiskAndProcesses(t *testing.T) {
	out := Render(testSnapshot(collectors.DiskMetrics{DriveLabel: "N/A"}, nil), sysmetrics.HostInfo{}, 60)

	if !strings.Contains(out, "N/A") {
		t.Error("expected N/A for the missing disk")
	}
	if strings.Contains(out, "PID") {
		t.Error("expected no process table without processes")
	}
	if strings.Contains(out, " @ ") {
		t.Error("expected no host name")
	}
}

func TestRender_MinimumWidth(t *testing.T) {
	out := Render(testSnapshot(collectors.DiskMetrics{}, nil), sysmetrics.HostInfo{}, 10)
	if w := lipgloss.Width(strings.Split(out, "\n")[0]); w != 40 {
		t.Errorf("expected width clamped to 40, got %d", w)
	}
}

func TestDetectSize_EnvFallback(t *testing.T) {
	env := map[string]string{"COLUMNS": "120", "LINES": "40"}
	// An invalid descriptor forces the environment fallback.
	w, h := detectSize(^uintptr(0), func(k string) string { return env[k] })
	if w != 120 || h != 40 {
		t.Errorf("detectSize = %dx%d, want 120x40", w, h)
	}
}

func TestDetectSize_Defaults(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unset", map[string]string{}},
		{"invalid", map[string]string{"COLUMNS": "wide", "LINES": "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := detectSize(^uintptr(0), func(k string) string { return tt.env[k] })
			if w != 80 || h != 24 {
				t.Errorf("detectSize = %dx%d, want 80x24", w, h)
			}
		})
	}
}

func TestDetectTerminalSize(t *testing.T) {
	w, h := DetectTerminalSize()
	if w <= 0 || h <= 0 {
		t.Errorf("expected positive size, got %dx%d", w, h)
	}
}
