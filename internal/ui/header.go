package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Title   string // Command title (e.g., "mintkey setup")
	Version string // Version string (e.g., "v0.2.0")
	Detail  string // Optional muted line (e.g., the env file being edited)
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a title line, optional detail, and a divider.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorInfo).
		Bold(true)

	versionStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	dividerStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	var output strings.Builder

	output.WriteString(titleStyle.Render(info.Title))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(versionStyle.Render(info.Version))
	}
	output.WriteString("\n")

	if info.Detail != "" {
		output.WriteString(Muted(info.Detail))
		output.WriteString("\n")
	}

	output.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}
