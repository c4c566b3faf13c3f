// Package summary renders a snapshot as plain styled text for one-shot
// command line output.
package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/sysinsight/display/widgets"
	"gitlab.com/tinyland/lab/sysinsight/internal/format"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	styleBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1)
)

// labelWidth aligns the value column.
const labelWidth = 10

// Render formats snap and host as a boxed report no wider than width.
// The process table is omitted when snap has no processes.
func Render(snap collectors.SystemSnapshot, host sysmetrics.HostInfo, width int) string {
	if width < 40 {
		width = 40
	}
	inner := width - 4
	gaugeWidth := max(inner-labelWidth-8, 10)

	mem := snap.Memory()
	disk := snap.Disk()

	title := "System snapshot"
	if host.Hostname != "" {
		title += " @ " + host.Hostname
	}

	lines := []string{
		styleTitle.Render(title),
		row("Taken", snap.TakenAt().Format("2006-01-02 15:04:05")),
	}
	if host.OS != "" {
		lines = append(lines, row("OS", host.OS))
	}
	if host.CPUModel != "" {
		lines = append(lines, row("CPU model", host.CPUModel))
	}

	lines = append(lines,
		"",
		row("CPU", fmt.Sprintf("%.1f%%", snap.CPU().Load)),
		strings.Repeat(" ", labelWidth)+widgets.Gauge{
			Width:       gaugeWidth,
			Percent:     snap.CPU().Load,
			ShowPercent: true,
			Thresholds:  widgets.CPUThresholds,
		}.Render(),
		row("Memory", fmt.Sprintf("%s / %s", format.Bytes(mem.UsedBytes), format.Bytes(mem.TotalBytes))),
		strings.Repeat(" ", labelWidth)+widgets.Gauge{
			Width:       gaugeWidth,
			Percent:     format.Percent(mem.UsedBytes, mem.TotalBytes),
			ShowPercent: true,
		}.Render(),
	)

	if disk.TotalBytes > 0 {
		lines = append(lines,
			row("Disk", fmt.Sprintf("%s / %s (%s)", format.Bytes(disk.UsedBytes), format.Bytes(disk.TotalBytes), disk.DriveLabel)),
			strings.Repeat(" ", labelWidth)+widgets.Gauge{
				Width:       gaugeWidth,
				Percent:     format.Percent(disk.UsedBytes, disk.TotalBytes),
				ShowPercent: true,
			}.Render(),
		)
	} else {
		lines = append(lines, row("Disk", "N/A"))
	}

	lines = append(lines, row("Processes", fmt.Sprintf("%d", snap.ProcessCount())))

	if procs := snap.TopProcesses(); len(procs) > 0 {
		lines = append(lines, "", widgets.ProcessTable(procs, inner))
	}

	return styleBox.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return styleLabel.Render(fmt.Sprintf("%-*s", labelWidth, label)) + value
}
