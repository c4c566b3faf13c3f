// Package widgets renders the dashboard building blocks: usage gauges and
// metric cards, history sparklines and the top-process table.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	gaugeFilled = "█"
	gaugeEmpty  = "░"

	colorOK      = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#EAB308")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Thresholds are the percentages at which a gauge turns yellow and red.
type Thresholds struct {
	Warning float64
	Danger  float64
}

var (
	// CPUThresholds flag sustained load above 80%.
	CPUThresholds = Thresholds{Warning: 60, Danger: 80}

	// UsageThresholds flag memory or disk usage above 90%.
	UsageThresholds = Thresholds{Warning: 75, Danger: 90}
)

// Color returns the gauge color for percent.
func (t Thresholds) Color(percent float64) lipgloss.Color {
	switch {
	case percent >= t.Danger:
		return colorDanger
	case percent >= t.Warning:
		return colorWarning
	default:
		return colorOK
	}
}

// Gauge is a horizontal usage bar.
type Gauge struct {
	// Width is the bar width in cells. Zero means 20.
	Width int
	// Percent is clamped to [0, 100].
	Percent float64
	// Label is optional text shown to the left of the bar.
	Label string
	// ShowPercent appends "XX%" to the right of the bar.
	ShowPercent bool
	Thresholds  Thresholds
}

// Render draws the gauge as "[Label] ████░░░░ [XX%]".
func (g Gauge) Render() string {
	percent := math.Max(0, math.Min(100, g.Percent))

	width := g.Width
	if width <= 0 {
		width = 20
	}
	th := g.Thresholds
	if th == (Thresholds{}) {
		th = UsageThresholds
	}

	filled := int(math.Round(percent / 100.0 * float64(width)))

	var sb strings.Builder
	if g.Label != "" {
		sb.WriteString(g.Label)
		sb.WriteString(" ")
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(th.Color(percent)).Render(strings.Repeat(gaugeFilled, filled)))
	sb.WriteString(strings.Repeat(gaugeEmpty, width-filled))
	if g.ShowPercent {
		sb.WriteString(fmt.Sprintf(" %3.0f%%", percent))
	}
	return sb.String()
}

// Card is one dashboard tile: a title, a headline value and a gauge.
type Card struct {
	Title string
	// Value is the headline text, e.g. "42.0%" or "7.9 GB / 15.9 GB".
	Value string
	// Percent drives the gauge. A negative value hides it.
	Percent    float64
	Thresholds Thresholds
	// Width is the outer width including the border.
	Width int
	// Accent colors the border and title.
	Accent lipgloss.Color
}

// Render draws the card with a rounded border.
func (c Card) Render() string {
	width := c.Width
	if width < 12 {
		width = 12
	}
	inner := width - 4 // border plus one cell of padding each side

	accent := c.Accent
	if accent == "" {
		accent = colorMuted
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(truncate(c.Title, inner))
	value := lipgloss.NewStyle().Bold(true).Render(truncate(c.Value, inner))

	lines := []string{title, value}
	if c.Percent >= 0 {
		lines = append(lines, Gauge{
			Width:      inner,
			Percent:    c.Percent,
			Thresholds: c.Thresholds,
		}.Render())
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join(lines, "\n"))
}

// truncate shortens s to width cells, ending with an ellipsis if cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "…"
}
