package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown for the terminal
// using glamour. When stdout is not a TTY (pipes, CI) or NO_COLOR is set,
// the markdown is passed through untouched so output stays grep-friendly.
func NewRenderer() func(string) (string, error) {
	if !Interactive() {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	// Initialize renderer with standard dark style
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Interactive reports whether stdout is an interactive terminal that
// wants styled output.
func Interactive() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
