package ui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// withProfile restores the global lipgloss profile after a test changes it.
func withProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestSemanticColorsAreUnique(t *testing.T) {
	colors := []lipgloss.Color{ColorSuccess, ColorError, ColorWarning, ColorInfo}

	seen := make(map[string]bool)
	for _, c := range colors {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[string(c)], "duplicate color %s", c)
		seen[string(c)] = true
	}
}

func TestSetColorMode(t *testing.T) {
	withProfile(t)
	var buf bytes.Buffer

	SetColorMode(ColorModeNever, &buf)
	assert.False(t, ColorsEnabled())
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	SetColorMode(ColorModeAlways, &buf)
	assert.True(t, ColorsEnabled(), "always forces color on a non-terminal writer")
}

func TestDisableColors(t *testing.T) {
	withProfile(t)
	lipgloss.SetColorProfile(termenv.ANSI)

	DisableColors()

	rendered := lipgloss.NewStyle().Foreground(ColorSuccess).Render("text")
	assert.Equal(t, "text", rendered, "monochrome output has no escape codes")
}
