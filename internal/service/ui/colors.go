package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan) for headings, readable on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for usage lines and arguments
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black / Gray) for descriptions
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// IntentStyle ANSI 2 (Green) for the resolved intent tag in the REPL
	IntentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	// EntityStyle ANSI 4 (Blue) for entity key/value dumps
	EntityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	// WarnStyle ANSI 1 (Red) for attached errors and low-confidence results
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
