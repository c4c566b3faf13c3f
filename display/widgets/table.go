package widgets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
)

// Alignment controls text alignment within a table column.
type Alignment int

const (
	// AlignLeft aligns text to the left (default).
	AlignLeft Alignment = iota
	// AlignRight aligns text to the right.
	AlignRight
)

// Column defines a single table column.
type Column struct {
	Title string
	// Width is the fixed width in cells. Zero sizes the column to its widest
	// cell and marks it as the one that shrinks when the table is too wide.
	Width int
	Align Alignment
}

const columnGap = "  "

var (
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	styleTableRule   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Table renders rows under a header and a rule line, fitting maxWidth when it
// is positive.
func Table(cols []Column, rows [][]string, maxWidth int) string {
	if len(cols) == 0 {
		return ""
	}

	widths := columnWidths(cols, rows, maxWidth)

	cells := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = fit(col.Title, widths[i], col.Align)
		rule[i] = strings.Repeat("─", widths[i])
	}

	lines := []string{
		styleTableHeader.Render(strings.Join(cells, columnGap)),
		styleTableRule.Render(strings.Join(rule, columnGap)),
	}

	for _, row := range rows {
		for i, col := range cols {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			cells[i] = fit(text, widths[i], col.Align)
		}
		lines = append(lines, strings.Join(cells, columnGap))
	}

	return strings.Join(lines, "\n")
}

// columnWidths resolves zero widths from content, then shrinks the flexible
// columns until the table fits maxWidth. Each column keeps at least one cell.
func columnWidths(cols []Column, rows [][]string, maxWidth int) []int {
	widths := make([]int, len(cols))
	total := len(columnGap) * (len(cols) - 1)

	for i, col := range cols {
		w := col.Width
		if w <= 0 {
			w = len([]rune(col.Title))
			for _, row := range rows {
				if i < len(row) {
					w = max(w, len([]rune(row[i])))
				}
			}
		}
		widths[i] = max(w, 1)
		total += widths[i]
	}

	if maxWidth <= 0 || total <= maxWidth {
		return widths
	}

	excess := total - maxWidth
	for i, col := range cols {
		if col.Width > 0 || excess == 0 {
			continue
		}
		cut := min(excess, widths[i]-1)
		widths[i] -= cut
		excess -= cut
	}
	return widths
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int, align Alignment) string {
	s = truncate(s, width)
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// processColumns are the columns of the top-process table.
var processColumns = []Column{
	{Title: "PID", Width: 7, Align: AlignRight},
	{Title: "Name"},
	{Title: "CPU %", Width: 8, Align: AlignRight},
	{Title: "Memory", Width: 10, Align: AlignRight},
}

// ProcessTable renders the ranked process list with PID, Name, CPU % and
// Memory columns. CPU is shown with one decimal and is not capped at 100.
func ProcessTable(procs []collectors.ProcessRecord, maxWidth int) string {
	if len(procs) == 0 {
		return lipgloss.NewStyle().Foreground(colorMuted).Render("No process data yet.")
	}

	rows := make([][]string, len(procs))
	for i, p := range procs {
		rows[i] = []string{
			strconv.Itoa(int(p.PID)),
			p.Name,
			fmt.Sprintf("%.1f%%", p.CPUPercent),
			p.MemoryLabel,
		}
	}
	return Table(processColumns, rows, maxWidth)
}
