package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette using ANSI color codes for terminal compatibility.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Color modes accepted by SetColorMode.
const (
	ColorModeAuto   = "auto"
	ColorModeAlways = "always"
	ColorModeNever  = "never"
)

// SetColorMode picks the lipgloss color profile.
//
//	auto   - detect from w and the environment (NO_COLOR, CLICOLOR_FORCE, TERM)
//	always - force ANSI colors even when w isn't a terminal
//	never  - plain text
func SetColorMode(mode string, w io.Writer) {
	switch mode {
	case ColorModeNever:
		DisableColors()
	case ColorModeAlways:
		profile := termenv.NewOutput(w).EnvColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI
		}
		lipgloss.SetColorProfile(profile)
	default:
		lipgloss.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	}
}

// DisableColors switches all rendering to monochrome (for --no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsEnabled reports whether rendered output carries color codes.
func ColorsEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
