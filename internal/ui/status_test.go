package ui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func plain(t *testing.T) {
	t.Helper()
	withProfile(t)
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestStatusSymbols(t *testing.T) {
	tests := []struct {
		status Status
		symbol string
		color  lipgloss.Color
	}{
		{StatusSuccess, SymbolSuccess, ColorSuccess},
		{StatusWarning, SymbolWarning, ColorWarning},
		{StatusFail, SymbolFail, ColorError},
		{StatusPending, SymbolPending, ColorMuted},
		{StatusSkipped, SymbolSkipped, ColorMuted},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.symbol, tt.status.Symbol())
			assert.Equal(t, tt.color, tt.status.Color())
		})
	}
}

func TestStatusLine(t *testing.T) {
	plain(t)
	assert.Equal(t, "✓ done", StatusLine(StatusSuccess, "done"))
	assert.Equal(t, "⚠ careful", StatusLine(StatusWarning, "careful"))
}

func TestPrinter(t *testing.T) {
	plain(t)

	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Section("Next steps")
	p.Status(StatusSuccess, "wrote %s", ".env")
	p.Numbered([]string{"first", "second\n  detail"})
	p.Blank()

	want := "Next steps\n" +
		"  ✓ wrote .env\n" +
		"  1. first\n" +
		"  2. second\n" +
		"       detail\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Quiet(t *testing.T) {
	plain(t)

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Line("hidden")
	p.Status(StatusWarning, "hidden")
	p.Status(StatusFail, "shown")

	assert.Equal(t, "  ✗ shown\n", buf.String())
}

func TestRenderHeader(t *testing.T) {
	plain(t)

	out := RenderHeader(HeaderInfo{Title: "mintkey setup", Version: "v1.0.0", Detail: "/srv/app/.env"})
	assert.Contains(t, out, "mintkey setup v1.0.0\n")
	assert.Contains(t, out, "/srv/app/.env\n")
	assert.Contains(t, out, "━━━")
}
