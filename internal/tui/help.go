package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var helpOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(1, 2).
	MarginTop(1)

// HelpModel renders the bindings of one screen, either as the one-line bar
// under the table or as the full overlay toggled with "?".
type HelpModel struct {
	help  help.Model
	keys  help.KeyMap
	title string
}

// NewHelpModel creates the help for the screen called title.
func NewHelpModel(title string, keys help.KeyMap) HelpModel {
	return HelpModel{help: help.New(), keys: keys, title: title}
}

// Overlay lists every binding, grouped in columns.
func (m HelpModel) Overlay(width int) string {
	m.help.ShowAll = true
	m.help.Width = max(width-8, 20) // border and padding
	return helpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(m.title+" keys"),
		m.help.View(m.keys),
	))
}

// Bar is the short hint line.
func (m HelpModel) Bar(width int) string {
	m.help.ShowAll = false
	m.help.Width = width
	return m.help.View(m.keys)
}
