// Package theme holds the lipgloss styles shared by the CLI and the board.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorAccent = lipgloss.AdaptiveColor{Dark: "#E8943A", Light: "#D97706"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#7FA886", Light: "#6B8F71"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorText   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers and the board title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorText).
	Background(ColorAccent).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps boxed content such as the stats summary.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ItemStyle is the base style for list rows.
var ItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorAccent).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorAccent)

// CompletedStyle renders finished todos.
var CompletedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// OverdueStyle marks deadlines that have passed.
var OverdueStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// HelpStyle is used for key hints and secondary text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders error lines.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// PriorityStyle returns a color-coded style for a todo priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityLabel is the short marker shown next to a todo.
func PriorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!!"
	case model.PriorityLow:
		return "!"
	default:
		return "?"
	}
}

// CategoryStyle colors text with the category's color for the active
// theme. Categories without a color fall back to the accent.
func CategoryStyle(c model.Category, dark bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if color := c.Color(dark); color != "" {
		return base.Foreground(lipgloss.Color(color))
	}
	return base.Foreground(ColorAccent)
}
