package tui

import "github.com/charmbracelet/lipgloss"

// ThemePreset defines the color scheme and layout density of the dashboard.
type ThemePreset struct {
	Name        string
	Description string
	// Colors
	Accent    lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	// Layout
	ShowBorders bool
	CompactMode bool
}

// Predefined theme presets.
var (
	// MonitoringTheme is the default dark theme.
	MonitoringTheme = ThemePreset{
		Name:        "monitoring",
		Description: "Dark theme for system monitoring",
		Accent:      lipgloss.Color("#7C3AED"),
		Secondary:   lipgloss.Color("#06B6D4"),
		Success:     lipgloss.Color("#22C55E"),
		Danger:      lipgloss.Color("#EF4444"),
		Muted:       lipgloss.Color("#6B7280"),
		ShowBorders: true,
	}

	// MinimalTheme drops borders and padding.
	MinimalTheme = ThemePreset{
		Name:        "minimal",
		Description: "Clean minimal theme",
		Accent:      lipgloss.Color("#8B5CF6"),
		Secondary:   lipgloss.Color("#67E8F9"),
		Success:     lipgloss.Color("#4ADE80"),
		Danger:      lipgloss.Color("#F87171"),
		Muted:       lipgloss.Color("#9CA3AF"),
		CompactMode: true,
	}

	// FullTheme is brighter and roomier.
	FullTheme = ThemePreset{
		Name:        "full",
		Description: "Rich theme with all features",
		Accent:      lipgloss.Color("#A78BFA"),
		Secondary:   lipgloss.Color("#22D3EE"),
		Success:     lipgloss.Color("#34D399"),
		Danger:      lipgloss.Color("#FB7185"),
		Muted:       lipgloss.Color("#D1D5DB"),
		ShowBorders: true,
	}
)

var allPresets = []ThemePreset{MonitoringTheme, MinimalTheme, FullTheme}

// GetThemePreset returns the preset matching name.
// Unknown names return MonitoringTheme.
func GetThemePreset(name string) ThemePreset {
	for _, p := range allPresets {
		if p.Name == name {
			return p
		}
	}
	return MonitoringTheme
}

// styles holds every lipgloss style the model renders with, derived from one
// preset so themes never leak between models.
type styles struct {
	preset ThemePreset

	header  lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	panel   lipgloss.Style
	footer  lipgloss.Style
	content lipgloss.Style
	notice  lipgloss.Style
	failure lipgloss.Style

	button         lipgloss.Style
	buttonDisabled lipgloss.Style
}

func newStyles(preset ThemePreset) styles {
	s := styles{preset: preset}

	s.header = lipgloss.NewStyle().MarginBottom(1)
	if preset.ShowBorders {
		s.header = s.header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(preset.Muted)
	}

	s.title = lipgloss.NewStyle().Bold(true).Foreground(preset.Secondary)
	s.label = lipgloss.NewStyle().Bold(true).Foreground(preset.Accent)
	s.muted = lipgloss.NewStyle().Foreground(preset.Muted)
	s.footer = lipgloss.NewStyle().Foreground(preset.Muted).MarginTop(1)
	s.notice = lipgloss.NewStyle().Italic(true).Foreground(preset.Secondary)
	s.failure = lipgloss.NewStyle().Bold(true).Foreground(preset.Danger)

	s.panel = lipgloss.NewStyle()
	if preset.ShowBorders {
		s.panel = s.panel.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(preset.Muted).
			Padding(0, 1)
	}

	if preset.CompactMode {
		s.content = lipgloss.NewStyle().Padding(0, 1)
	} else {
		s.content = lipgloss.NewStyle().Padding(1, 2)
	}

	s.button = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(preset.Accent).
		Padding(0, 2)
	s.buttonDisabled = lipgloss.NewStyle().
		Foreground(preset.Muted).
		Padding(0, 2)

	return s
}
