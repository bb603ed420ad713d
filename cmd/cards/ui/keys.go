package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Both         key.Binding
	Intermediate key.Binding
	Advanced     key.Binding
	Cycle        key.Binding
	Play         key.Binding
	Next         key.Binding
	Prev         key.Binding
	Dismiss      key.Binding
	Up           key.Binding
	Down         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Both:         key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "both")),
		Intermediate: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "intermediate")),
		Advanced:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "advanced")),
		Cycle:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next level")),
		Play:         key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "play/stop")),
		Next:         key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next group")),
		Prev:         key.NewBinding(key.WithKeys("N", "left"), key.WithHelp("N/←", "prev group")),
		Dismiss:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Play, k.Next, k.Prev, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Both, k.Intermediate, k.Advanced, k.Cycle},
		{k.Play, k.Dismiss},
		{k.Next, k.Prev, k.Up, k.Down, k.Quit},
	}
}
