package tui

import "strings"

// LayoutSize represents a responsive breakpoint for terminal width.
type LayoutSize int

const (
	// LayoutCompact is used for terminals narrower than 60 characters.
	LayoutCompact LayoutSize = iota
	// LayoutNormal is used for terminals between 60 and 120 characters wide.
	LayoutNormal
	// LayoutWide is used for terminals wider than 120 characters.
	LayoutWide
)

// DetectLayout returns the appropriate LayoutSize for the given terminal width.
func DetectLayout(width int) LayoutSize {
	switch {
	case width < 60:
		return LayoutCompact
	case width <= 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}

// layout holds the sizes derived from the terminal width.
type layout struct {
	// cardWidth is the outer width of each metric card.
	cardWidth int
	// stackCards renders the cards vertically instead of in a row.
	stackCards bool
	// sparkWidth is the number of history points drawn.
	sparkWidth int
	// tableWidth bounds the process table.
	tableWidth int
	// showHost shows the static host panel.
	showHost bool
}

const cardCount = 4

func layoutFor(width int) layout {
	inner := max(width-4, 20)

	switch DetectLayout(width) {
	case LayoutCompact:
		return layout{
			cardWidth:  inner,
			stackCards: true,
			sparkWidth: max(inner-12, 8),
			tableWidth: inner,
		}
	case LayoutWide:
		return layout{
			cardWidth:  inner/cardCount - 1,
			sparkWidth: inner/2 - 14,
			tableWidth: inner,
			showHost:   true,
		}
	default:
		return layout{
			cardWidth:  inner/cardCount - 1,
			sparkWidth: inner - 14,
			tableWidth: inner,
			showHost:   true,
		}
	}
}

// sectionTitle renders a centered title with horizontal rules on either side.
// Format: "──── Title ────"
func sectionTitle(title string, width int) string {
	if width <= 0 {
		return title
	}

	decorLen := len([]rune(title)) + 2
	if decorLen >= width {
		return title
	}

	remaining := width - decorLen
	left := remaining / 2
	return strings.Repeat("─", left) + " " + title + " " + strings.Repeat("─", remaining-left)
}
