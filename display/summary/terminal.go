package summary

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// DetectTerminalSize returns the dimensions of the terminal on stdout.
// It asks the TTY first, then falls back to the COLUMNS and LINES
// environment variables, and finally to 80x24.
func DetectTerminalSize() (width, height int) {
	return detectSize(os.Stdout.Fd(), os.Getenv)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

func detectSize(fd uintptr, getenv func(string) string) (width, height int) {
	if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
		return w, h
	}

	if w, err := strconv.Atoi(getenv("COLUMNS")); err == nil && w > 0 {
		width = w
	}
	if h, err := strconv.Atoi(getenv("LINES")); err == nil && h > 0 {
		height = h
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}
