package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/sysinsight/display/markup"
	"gitlab.com/tinyland/lab/sysinsight/display/widgets"
	"gitlab.com/tinyland/lab/sysinsight/internal/format"
)

// renderHeader renders the title bar with the host name and poll interval.
func (m Model) renderHeader() string {
	title := m.styles.label.Render("sysinsight")
	if m.host.Hostname != "" {
		title += m.styles.muted.Render(" @ " + m.host.Hostname)
	}
	if m.interval > 0 {
		title += m.styles.muted.Render("  every " + format.Duration(m.interval))
	}
	return m.styles.header.Width(m.width).Render(title)
}

// renderCards renders the CPU, memory, disk and process count cards.
func (m Model) renderCards(l layout) string {
	if !m.hasSnapshot {
		return m.styles.muted.Render("Waiting for the first sample...")
	}

	cpu := m.snapshot.CPU()
	mem := m.snapshot.Memory()
	disk := m.snapshot.Disk()

	diskTitle := "Disk"
	if disk.DriveLabel != "" {
		diskTitle = "Disk " + disk.DriveLabel
	}
	diskValue := "N/A"
	diskPercent := -1.0
	if disk.TotalBytes > 0 {
		diskValue = usage(disk.UsedBytes, disk.TotalBytes)
		diskPercent = format.Percent(disk.UsedBytes, disk.TotalBytes)
	}

	accent := m.styles.preset.Accent
	cards := []string{
		widgets.Card{
			Title:      "CPU",
			Value:      fmt.Sprintf("%.1f%%", cpu.Load),
			Percent:    cpu.Load,
			Thresholds: widgets.CPUThresholds,
			Width:      l.cardWidth,
			Accent:     accent,
		}.Render(),
		widgets.Card{
			Title:      "Memory",
			Value:      usage(mem.UsedBytes, mem.TotalBytes),
			Percent:    format.Percent(mem.UsedBytes, mem.TotalBytes),
			Thresholds: widgets.UsageThresholds,
			Width:      l.cardWidth,
			Accent:     accent,
		}.Render(),
		widgets.Card{
			Title:      diskTitle,
			Value:      diskValue,
			Percent:    diskPercent,
			Thresholds: widgets.UsageThresholds,
			Width:      l.cardWidth,
			Accent:     accent,
		}.Render(),
		widgets.Card{
			Title:   "Processes",
			Value:   fmt.Sprintf("%d", m.snapshot.ProcessCount()),
			Percent: -1,
			Width:   l.cardWidth,
			Accent:  accent,
		}.Render(),
	}

	if l.stackCards {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	for i := range cards[:len(cards)-1] {
		cards[i] += " "
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderHistory renders CPU and memory sparklines over the full history,
// showing only the newest points that fit.
func (m Model) renderHistory(l layout) string {
	row := func(label string, s *widgets.Series) string {
		last := s.Last(1)
		value := 0.0
		if len(last) == 1 {
			value = last[0]
		}
		return fmt.Sprintf("%s %s %5.1f%%",
			m.styles.label.Render(fmt.Sprintf("%-6s", label)),
			widgets.Sparkline(s.Last(l.sparkWidth), l.sparkWidth, 0, 100, m.styles.preset.Secondary),
			value,
		)
	}
	return strings.Join([]string{
		row("CPU", &m.cpuHistory),
		row("Memory", &m.memHistory),
	}, "\n")
}

// renderHost renders the static host information panel, truncating values
// to fit width.
func (m Model) renderHost(width int) string {
	rows := []struct {
		label string
		value string
	}{
		{"OS", m.host.OS},
		{"Kernel", m.host.Kernel},
		{"CPU", m.host.CPUModel},
	}
	if m.host.PhysicalCores > 0 || m.host.LogicalCores > 0 {
		rows = append(rows, struct {
			label string
			value string
		}{"Cores", fmt.Sprintf("%d physical, %d logical", m.host.PhysicalCores, m.host.LogicalCores)})
	}

	var lines []string
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		value := format.TruncateWithEllipsis(r.value, width-len(r.label)-6)
		lines = append(lines, m.styles.label.Render(r.label+":")+" "+value)
	}
	if len(lines) == 0 {
		return m.styles.muted.Render("Host information unavailable")
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

// renderInsight renders the explain button and the latest insight, notice
// or error.
func (m Model) renderInsight(width int) string {
	button := m.styles.button.Render("Explain")
	if m.explaining || m.explainer == nil {
		button = m.styles.buttonDisabled.Render("Explain")
	}
	lines := []string{m.zones.Mark(explainZone, button)}

	switch {
	case m.explaining:
		lines = append(lines, m.spinner.View()+" "+m.styles.notice.Render(m.notice))
	case m.failure != nil:
		lines = append(lines, m.styles.failure.Render("Error: "+m.failure.Error()))
	case m.notice != "":
		lines = append(lines, m.styles.notice.Render(m.notice))
	}

	if m.insight != "" {
		lines = append(lines,
			"",
			m.styles.title.Render(markup.Title),
			markup.Terminal(m.insight, width),
			m.styles.muted.Render(markup.Attribution),
		)
	}

	return strings.Join(lines, "\n")
}

func usage(used, total uint64) string {
	return format.Bytes(used) + " / " + format.Bytes(total)
}
