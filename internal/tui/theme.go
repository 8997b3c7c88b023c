package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorDanger  = lipgloss.Color("#EF4444") // Red (marked for removal)
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorBorder  = lipgloss.Color("#374151") // Dark gray
)

// Shared styles used across TUI views.
var (
	// Section header above the list (e.g. "REMOVE SKILLS").
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorMuted)

	// Selected (cursor) item in a list.
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Normal (unselected) item in a list.
	normalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB"))

	// Muted text (descriptions, secondary info).
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Checkbox of an item marked for removal.
	markedStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	// Target badge after the skill name.
	targetBadgeStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	// Help text at the bottom.
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// SKILL.md preview title bar.
	viewportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#D1D5DB")).
				Background(colorBorder).
				Padding(0, 1)

	// Confirmation dialog.
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	dialogButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorMuted).
				Padding(0, 2)

	dialogActiveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorDanger).
				Padding(0, 2).
				Bold(true)
)
