package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Stats panel
	Stats key.Binding

	// Re-run materialization for the current time
	Refresh key.Binding

	// Punching
	Punch     key.Binding
	PunchNote key.Binding

	// Instance actions
	New     key.Binding
	Edit    key.Binding
	Done    key.Binding
	Archive key.Binding
	GiveUp  key.Binding
	Delete  key.Binding

	// Show or hide finished instances
	ToggleCompleted key.Binding
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
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh day"),
		),
		Punch: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "punch in"),
		),
		PunchNote: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "punch with note"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive template"),
		),
		GiveUp: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "give up goal"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ToggleCompleted: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide/show done"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Punch, k.New,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.Punch, k.PunchNote, k.Done, k.ToggleCompleted},
		{k.New, k.Edit, k.Archive, k.GiveUp, k.Delete},
		{k.Command, k.Stats, k.Refresh, k.Help},
	}
}
