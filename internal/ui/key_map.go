package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	submit key.Binding
	add    key.Binding
	remove key.Binding
	rename key.Binding
	save   key.Binding
	search key.Binding
	toggle key.Binding
	back   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		add:    key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter", "add to draft")),
		remove: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		rename: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to Spotify")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results/draft")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.add, k.toggle},
		{k.remove, k.rename, k.save},
		{k.back, k.quit},
	}
}
