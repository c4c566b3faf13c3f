package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines all key bindings for the dashboard.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Explain key.Binding
	Clear   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Explain, k.Help, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Explain, k.Clear},
		{k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the application.
var keys = keyMap{
	Explain: key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "explain")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear insight")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// KeyTable returns a plain listing of every dashboard binding, one per line.
func KeyTable() string {
	var sb strings.Builder
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			sb.WriteString(fmt.Sprintf("  %-20s  %s\n", strings.Join(b.Keys(), ", "), b.Help().Desc))
		}
	}
	return sb.String()
}

// duplicateKeys reports keys bound to more than one action.
func duplicateKeys() []string {
	seen := make(map[string]string)
	var conflicts []string
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				if existing, ok := seen[k]; ok {
					conflicts = append(conflicts, fmt.Sprintf("duplicate key %q: %s vs %s", k, existing, b.Help().Desc))
					continue
				}
				seen[k] = b.Help().Desc
			}
		}
	}
	return conflicts
}
