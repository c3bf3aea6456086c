package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyValue is one labelled row in a report.
type KeyValue struct {
	Key   string
	Value string
}

// RenderKeyValues renders aligned "key  value" rows, keys muted.
func RenderKeyValues(rows []KeyValue) string {
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Key); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(Muted(padRight(r.Key, width)))
		b.WriteString("  ")
		b.WriteString(r.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Message    string // Check result message
	Suggestion string // Suggestion for fixing (if failed)
}

// DoctorCategory groups rows under a heading.
type DoctorCategory struct {
	Name string
	Rows []DoctorCheckRow
}

// RenderDoctorTable renders doctor check results grouped by category.
func RenderDoctorTable(categories []DoctorCategory) string {
	if len(categories) == 0 {
		return "No checks to display\n"
	}

	var output strings.Builder
	for _, cat := range categories {
		output.WriteString(Bold(cat.Name) + "\n")

		for _, row := range cat.Rows {
			output.WriteString("  " + StatusLine(doctorStatus(row.Status), row.Message) + "\n")

			if row.Suggestion != "" && row.Status != "pass" {
				for _, line := range strings.Split(row.Suggestion, "\n") {
					output.WriteString("    " + Muted(line) + "\n")
				}
			}
		}
		output.WriteString("\n")
	}

	return output.String()
}

func doctorStatus(s string) Status {
	switch s {
	case "pass":
		return StatusSuccess
	case "warn":
		return StatusWarning
	case "fail":
		return StatusFail
	default:
		return StatusPending
	}
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
