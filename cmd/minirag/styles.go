package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// stderrStyleSet holds the styles for output written to stderr. They are
// built on a renderer bound to that writer, so color detection follows stderr
// even when stdout is a terminal and stderr is redirected.
type stderrStyleSet struct {
	spinner lipgloss.Style
	dim     lipgloss.Style
	err     lipgloss.Style
}

func newStderrStyles(w io.Writer) stderrStyleSet {
	r := lipgloss.NewRenderer(w)

	return stderrStyleSet{
		spinner: r.NewStyle().Foreground(lipgloss.Color("5")), // magenta
		dim:     r.NewStyle().Foreground(lipgloss.Color("8")), // gray
		err:     r.NewStyle().Foreground(lipgloss.Color("1")), // red
	}
}

var stderrStyles = newStderrStyles(os.Stderr)

// Styles for stdout use the default renderer, which follows stdout.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
