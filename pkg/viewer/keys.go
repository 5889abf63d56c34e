package viewer

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Reload   key.Binding
	Reset    key.Binding
	Pin      key.Binding
	LoDown   key.Binding
	LoUp     key.Binding
	HiDown   key.Binding
	HiUp     key.Binding
	IsoDown  key.Binding
	IsoUp    key.Binding
	Panel    key.Binding
	Snapshot key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload now")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset levels")),
	Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin levels")),
	LoDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "level lo -")),
	LoUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "level lo +")),
	HiDown:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "level hi -")),
	HiUp:     key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "level hi +")),
	IsoDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "isoline -")),
	IsoUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "isoline +")),
	Panel:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "histogram panel")),
	Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save snapshot")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.Pin, k.Panel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.LoDown, k.LoUp, k.HiDown, k.HiUp},
		{k.IsoDown, k.IsoUp, k.Reset, k.Pin},
		{k.Reload, k.Snapshot, k.Panel, k.Quit},
	}
}
