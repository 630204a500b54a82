package tui

import "github.com/charmbracelet/bubbles/key"

type loginKeyMap struct {
	Next   key.Binding
	Submit key.Binding
	Guest  key.Binding
	Quit   key.Binding
}

func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Guest, k.Quit}
}

func (k loginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type menuKeyMap struct {
	Play    key.Binding
	History key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.History, k.Logout, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type playKeyMap struct {
	Abandon key.Binding
	Quit    key.Binding
}

func (k playKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Abandon, k.Quit}
}

func (k playKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var (
	loginKeys = loginKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "log in")),
		Guest:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "play as guest")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	confirmKeys = confirmKeyMap{
		Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "create account")),
		No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "go back")),
	}
	menuKeys = menuKeyMap{
		Play:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Logout:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log out")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	playKeys = playKeyMap{
		Abandon: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abandon run")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
)
