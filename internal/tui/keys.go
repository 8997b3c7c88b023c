package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings for the remove picker.
type keyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Preview   key.Binding
	Filter    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k/up", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/down", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "remove marked"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space/x", "toggle"),
	),
	ToggleAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all/none"),
	),
	Preview: key.NewBinding(
		key.WithKeys("tab", "p"),
		key.WithHelp("tab", "preview"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
}

// pickHelpKeyMap is shown in the selection phase.
type pickHelpKeyMap struct{}

func (k pickHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		keys.Up, keys.Down, keys.Toggle, keys.ToggleAll,
		keys.Preview, keys.Filter, keys.Enter, keys.Quit,
	}
}

func (k pickHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// previewHelpKeyMap is shown in the SKILL.md preview.
type previewHelpKeyMap struct{}

func (k previewHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		keys.Up, keys.Down, keys.Back,
	}
}

func (k previewHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
