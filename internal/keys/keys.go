package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the board.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Todo actions
	Add      key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding

	// List scope
	CycleSort     key.Binding
	NextCategory  key.Binding
	ShowCompleted key.Binding
	Refresh       key.Binding

	// Help and quit
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s", "tab"),
			key.WithHelp("s/tab", "cycle sort"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next category"),
		),
		ShowCompleted: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "show completed"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Add, k.Toggle, k.CycleSort, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Help, k.Quit},
		{k.Add, k.Toggle, k.Delete, k.MoveUp, k.MoveDown},
		{k.CycleSort, k.NextCategory, k.ShowCompleted, k.Refresh},
	}
}
