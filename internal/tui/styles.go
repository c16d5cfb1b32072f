package tui

import "charm.land/lipgloss/v2"

var (
	colorAccent   = lipgloss.Color("#FF8C00")
	colorUser     = lipgloss.Color("#D7A88F")
	colorAI       = lipgloss.Color("#F5EBE0")
	colorMuted    = lipgloss.Color("#888888")
	colorDisabled = lipgloss.Color("#555555")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorUser)

	aiLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	textStyle = lipgloss.NewStyle().
			Foreground(colorAI)

	strongStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAI)

	ruleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	loadingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	inputDisabledStyle = inputStyle.
				BorderForeground(colorDisabled)

	footerKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	footerDisabledStyle = lipgloss.NewStyle().
				Foreground(colorDisabled)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
