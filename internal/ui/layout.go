package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/theme"
)

// Layout manages the board's header, content and status bar dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the rows left for the content area.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// RenderHeader renders the title on the left and status on the right,
// filling the gap with the header background.
func (l Layout) RenderHeader(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(status)

	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderStatusBar renders the bottom bar across the full width.
func (l Layout) RenderStatusBar(text string) string {
	return theme.StatusBarStyle.Width(max(l.Width, lipgloss.Width(text))).Render(text)
}

// Frame stacks header, content and status bar.
func (l Layout) Frame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().Height(l.ContentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
