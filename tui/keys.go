package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Increase   key.Binding
	Decrease   key.Binding
	IncreaseLg key.Binding
	DecreaseLg key.Binding
	Type       key.Binding
	Commit     key.Binding
	Cancel     key.Binding
	Auto       key.Binding
	CalcGoal   key.Binding
	CalcContr  key.Binding
	CalcDur    key.Binding
	Reset      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab/↓", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab/↑", "prev field")),
		Increase:   key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→", "+step")),
		Decrease:   key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←", "-step")),
		IncreaseLg: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "+10 steps")),
		DecreaseLg: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "-10 steps")),
		Type:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "type value")),
		Commit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Auto:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-calculate")),
		CalcGoal:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "calculate goal")),
		CalcContr:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "calculate contribution")),
		CalcDur:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "calculate duration")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Increase, k.Decrease, k.Type, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Increase, k.Decrease, k.IncreaseLg, k.DecreaseLg},
		{k.Type, k.Commit, k.Cancel},
		{k.Auto, k.CalcGoal, k.CalcContr, k.CalcDur, k.Reset, k.Quit},
	}
}
