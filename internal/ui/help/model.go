// Package help renders the board's keyboard shortcut overlay.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys  *keys.KeyMap
	help  help.Model
	width int
}

// New creates a help overlay for km.
func New(km *keys.KeyMap, width int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: km, help: h}
	m.SetWidth(width)
	return m
}

// SetWidth updates the overlay width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.help.Width = max(width-4, 0)
}

// View renders every binding grouped in columns.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys)))
}
