package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap covers the terminal keys only. Piano keys come from the OS-level
// key source, so letters typed into the terminal are ignored here.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit, k.Help}}
}
