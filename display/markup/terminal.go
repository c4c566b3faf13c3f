package markup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleH1     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleH2     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	styleH3     = lipgloss.NewStyle().Bold(true)
	styleBold   = lipgloss.NewStyle().Bold(true)
	styleItalic = lipgloss.NewStyle().Italic(true)
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Terminal renders raw model output as styled text for a terminal of the
// given width. It recognises the same constructs as RenderBody; bullets are
// drawn as "•". A width of zero or less disables wrapping.
func Terminal(raw string, width int) string {
	text := strings.TrimSpace(newlines.Replace(raw))
	if text == "" {
		return styleMuted.Render("No response received.")
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "### "):
			out = append(out, styleH3.Render(inlineSpans(line[4:])))
		case strings.HasPrefix(line, "## "):
			out = append(out, styleH2.Render(inlineSpans(line[3:])))
		case strings.HasPrefix(line, "# "):
			out = append(out, styleH1.Render(inlineSpans(line[2:])))
		case strings.HasPrefix(line, "* "):
			out = append(out, "  • "+inlineSpans(strings.TrimSpace(line[2:])))
		default:
			out = append(out, inlineSpans(line))
		}
	}

	rendered := strings.Join(out, "\n")
	if width > 0 {
		rendered = lipgloss.NewStyle().Width(width).Render(rendered)
	}
	return rendered
}

// inlineSpans styles **bold** and *italic* spans, dropping the markers.
func inlineSpans(s string) string {
	s = boldRe.ReplaceAllStringFunc(s, func(m string) string {
		return styleBold.Render(m[2 : len(m)-2])
	})
	return italicRe.ReplaceAllStringFunc(s, func(m string) string {
		return styleItalic.Render(m[1 : len(m)-1])
	})
}
