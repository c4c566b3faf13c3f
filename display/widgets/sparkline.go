package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Series is an append-only history of readings for one chart. It grows for
// the lifetime of the process; rendering only looks at the newest points.
// A Series is not safe for concurrent use.
type Series struct {
	values []float64
}

// Append records a reading.
func (s *Series) Append(v float64) {
	s.values = append(s.values, v)
}

// Len returns the number of readings recorded.
func (s *Series) Len() int {
	return len(s.values)
}

// Last returns up to n of the newest readings, oldest first.
func (s *Series) Last(n int) []float64 {
	if n <= 0 || len(s.values) == 0 {
		return nil
	}
	if n > len(s.values) {
		n = len(s.values)
	}
	out := make([]float64, n)
	copy(out, s.values[len(s.values)-n:])
	return out
}

// Sparkline renders data as a row of block characters scaled between min and
// max. Values outside the range are clamped. Only the newest width points
// are drawn; shorter data is left-padded with spaces so the newest reading
// is always in the rightmost cell.
func Sparkline(data []float64, width int, min, max float64, color lipgloss.Color) string {
	if width <= 0 {
		width = len(data)
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	for _, v := range data {
		sb.WriteRune(sparkBlock(v, min, max))
	}

	out := sb.String()
	if color != "" {
		out = lipgloss.NewStyle().Foreground(color).Render(out)
	}
	if pad := width - len(data); pad > 0 {
		out = strings.Repeat(" ", pad) + out
	}
	return out
}

func sparkBlock(v, min, max float64) rune {
	if max <= min {
		return sparkBlocks[len(sparkBlocks)/2]
	}
	normalized := math.Max(0, math.Min(1, (v-min)/(max-min)))
	idx := int(math.Round(normalized * float64(len(sparkBlocks)-1)))
	return sparkBlocks[idx]
}
