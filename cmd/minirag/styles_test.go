package main

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestStderrStyles_FollowTheirOwnWriter(t *testing.T) {
	// A colorful stdout must not leak escapes into a redirected stderr.
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	s := newStderrStyles(&bytes.Buffer{})

	assert.Equal(t, "error: boom", s.err.Render("error: boom"))
	assert.Equal(t, "waiting", s.dim.Render("waiting"))
	assert.NotEqual(t, "error: boom", lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("error: boom"))
}
