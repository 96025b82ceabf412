package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/productivity"
)

// Palette
var (
	colorPrimary   = lipgloss.Color("#30506C")
	colorAccent    = lipgloss.Color("#469CA4")
	colorWarm      = lipgloss.Color("#D7B49E")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#4CAF82")
	colorWarning   = lipgloss.Color("#E2A03F")
	colorError     = lipgloss.Color("#D9534F")
	colorFg        = lipgloss.Color("#E5E7EB")
	colorSubtle    = lipgloss.Color("#3F4A56")
	colorHighlight = lipgloss.Color("#8CC7CC")
)

var moodColors = map[productivity.Mood]lipgloss.Color{
	productivity.MoodHappy:       lipgloss.Color("#F6C945"),
	productivity.MoodSad:         lipgloss.Color("#6B8FD6"),
	productivity.MoodAnxious:     lipgloss.Color("#E2A03F"),
	productivity.MoodCalm:        lipgloss.Color("#4CAF82"),
	productivity.MoodOverwhelmed: lipgloss.Color("#D9534F"),
	productivity.MoodFocused:     lipgloss.Color("#469CA4"),
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorAccent).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2).
			Align(lipgloss.Center)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	warmStyle = lipgloss.NewStyle().
			Foreground(colorWarm)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	doneItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)

func moodStyle(m productivity.Mood) lipgloss.Style {
	c, ok := moodColors[m]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c)
}

func cursorPrefix(selected bool) (string, lipgloss.Style) {
	if selected {
		return "> ", selectedItemStyle
	}
	return "  ", normalItemStyle
}
