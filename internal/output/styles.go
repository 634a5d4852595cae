package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Every color the CLI uses is named here.
var (
	// ColorCyan is used for identifiable nouns: kinds, resource names, paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "applied" status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for planned changes and warnings.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "deleted" status.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for the "failed" status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs.
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Resource statuses.
const (
	StatusApplied       = "applied"
	StatusDeleted       = "deleted"
	StatusAbsent        = "absent"
	StatusSkipped       = "skipped"
	StatusFailed        = "failed"
	StatusPlanned       = "planned"
	StatusPlannedDelete = "planned delete"
)

// StatusStyle returns the style of a status. Unknown statuses are unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusApplied:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusDeleted:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusAbsent, StatusSkipped:
		return lipgloss.NewStyle().Faint(true)
	case StatusPlanned, StatusPlannedDelete:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minResourceColumnWidth keeps status words aligned across lines.
const minResourceColumnWidth = 48

// FormatResourceLine renders "r:<Kind/name>" followed by a right-aligned,
// color-coded status.
func FormatResourceLine(kind, name, status string) string {
	path := kind + "/" + name

	padding := minResourceColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("r:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatCross renders a red cross with a message.
func FormatCross(msg string) string {
	cross := lipgloss.NewStyle().Foreground(ColorBoldRed).Render("✘")
	return cross + " " + msg
}

// vetLabelWidth aligns the detail column of vet check lines.
const vetLabelWidth = 34

// FormatVetCheck renders a passed check with an optional aligned detail.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := vetLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}
