package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#4CAF50")
	borderColor = lipgloss.Color("#555555")
	mutedColor  = lipgloss.Color("#94a3b8")

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(accentColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	optionStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(accentColor).
			PaddingLeft(2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
