package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the record reviewer.
type KeyMap struct {
	// Navigation
	NextRecord  key.Binding
	PrevRecord  key.Binding
	NextFailing key.Binding
	PrevFailing key.Binding

	// Scrolling
	Up           key.Binding
	Down         key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding

	Copy key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextRecord: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n", "next record"),
		),
		PrevRecord: key.NewBinding(
			key.WithKeys("N", "left", "h"),
			key.WithHelp("N", "previous record"),
		),
		NextFailing: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "next not correct"),
		),
		PrevFailing: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "previous not correct"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy record to clipboard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
