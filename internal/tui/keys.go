package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Open        key.Binding
	Select      key.Binding
	AddDocument key.Binding
	AddFolder   key.Binding
	Rename      key.Binding
	Synopsis    key.Binding
	Status      key.Binding
	Delete      key.Binding
	Move        key.Binding
	Yank        key.Binding
	Find        key.Binding
	Help        key.Binding
	Quit        key.Binding

	// Move mode
	MoveBefore key.Binding
	MoveAfter  key.Binding
	MoveInside key.Binding
	MoveRoot   key.Binding

	// Modals
	Confirm key.Binding
	Cancel  key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("l", "enter"),
			key.WithHelp("l/enter", "open"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		AddDocument: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add document"),
		),
		AddFolder: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add folder"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Synopsis: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit synopsis"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank id"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		MoveBefore: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "before"),
		),
		MoveAfter: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "after"),
		),
		MoveInside: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inside"),
		),
		MoveRoot: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "to root end"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}
