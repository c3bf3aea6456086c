package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is the outcome shown next to a line of output.
type Status int

const (
	StatusSuccess Status = iota
	StatusWarning
	StatusFail
	StatusPending
	StatusSkipped
)

// Symbol returns the glyph for s.
func (s Status) Symbol() string {
	switch s {
	case StatusSuccess:
		return SymbolSuccess
	case StatusWarning:
		return SymbolWarning
	case StatusFail:
		return SymbolFail
	case StatusSkipped:
		return SymbolSkipped
	default:
		return SymbolPending
	}
}

// Color returns the color used for s.
func (s Status) Color() lipgloss.Color {
	switch s {
	case StatusSuccess:
		return ColorSuccess
	case StatusWarning:
		return ColorWarning
	case StatusFail:
		return ColorError
	default:
		return ColorMuted
	}
}

// StatusLine renders "<symbol> <message>" with the symbol colored.
func StatusLine(s Status, message string) string {
	sym := lipgloss.NewStyle().Foreground(s.Color()).Render(s.Symbol())
	return sym + " " + message
}

// Muted renders secondary text.
func Muted(text string) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(text)
}

// Bold renders a section title.
func Bold(text string) string {
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// Highlight renders a value the operator will want to copy, like a path or command.
func Highlight(text string) string {
	return lipgloss.NewStyle().Foreground(ColorInfo).Render(text)
}

// Printer writes styled lines to w. A quiet printer drops everything except errors.
type Printer struct {
	w     io.Writer
	quiet bool
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, quiet bool) *Printer {
	return &Printer{w: w, quiet: quiet}
}

// Line prints text followed by a newline.
func (p *Printer) Line(text string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, text)
}

// Status prints an indented status line.
func (p *Printer) Status(s Status, format string, args ...interface{}) {
	if p.quiet && s != StatusFail {
		return
	}
	fmt.Fprintln(p.w, "  "+StatusLine(s, fmt.Sprintf(format, args...)))
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	p.Line("")
}

// Section prints a bold title.
func (p *Printer) Section(title string) {
	p.Line(Bold(title))
}

// Numbered prints an indented numbered list.
func (p *Printer) Numbered(items []string) {
	for i, item := range items {
		lines := strings.Split(item, "\n")
		p.Line(fmt.Sprintf("  %d. %s", i+1, lines[0]))
		for _, rest := range lines[1:] {
			p.Line("     " + rest)
		}
	}
}
