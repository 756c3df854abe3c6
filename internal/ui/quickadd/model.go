// Package quickadd is the one-line title prompt the board opens to add a
// todo to the category in view.
package quickadd

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/theme"
)

// SubmitMsg carries the entered title.
type SubmitMsg struct {
	Title string
}

// CancelMsg is emitted on esc.
type CancelMsg struct{}

// Model is the quick-add prompt.
type Model struct {
	input textinput.Model
	scope string
	width int
}

// New creates a focused prompt. scope names where the todo will land.
func New(scope string, width int) Model {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.Prompt = "+ "
	ti.CharLimit = 500
	ti.Focus()
	ti.Width = max(width-6, 20)

	return Model{input: ti, scope: scope, width: width}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles typing, enter and esc.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			title := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if title == "" {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{Title: title} }
		case tea.KeyEsc:
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Value returns the text typed so far.
func (m Model) Value() string {
	return m.input.Value()
}

// View renders the prompt in a panel.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("New todo in " + m.scope)
	return theme.PanelStyle.
		Width(max(m.width-4, 24)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.input.View()))
}
