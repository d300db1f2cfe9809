package ui

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
)

// GetFangScheme returns the same light/dark-aware color scheme fang uses.
func GetFangScheme() fang.ColorScheme {
	// This mirrors fang.mustColorscheme(DefaultColorScheme)
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	return fang.DefaultColorScheme(lipgloss.LightDark(isDark))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(f.Fd())
}

// failureColor is ANSI bright red.
var failureColor = lipgloss.Color("9") //nolint:gochecknoglobals // constant color

// Banner renders a one-line outcome banner. ok selects the success palette.
// When color is false the message is returned unstyled.
func Banner(msg string, ok bool, color bool) string {
	if !color {
		return msg
	}
	colorScheme := GetFangScheme()
	style := lipgloss.NewStyle().Bold(true)
	if ok {
		style = style.Foreground(colorScheme.Program)
	} else {
		style = style.Foreground(failureColor)
	}
	return style.Render(msg)
}
