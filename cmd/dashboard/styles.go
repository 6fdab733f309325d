package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// LabelStyle for field names in the detail view.
	LabelStyle = lipgloss.NewStyle().Width(18).Faint(true)
)

// FormatProfitRate formats a profit rate in percent with an indicator for its sign.
func FormatProfitRate(rate float64) string {
	text := fmt.Sprintf("%+.2f%%", rate)

	if rate > 0 {
		return text + " ▲"
	} else if rate < 0 {
		return text + " ▼"
	}

	return text
}
