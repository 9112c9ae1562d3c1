package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/james-see/ym2151tone/pkg/config"
)

// keyMap holds the editor bindings built from the config
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Inc   key.Binding
	Dec   key.Binding
	Inc10 key.Binding
	Dec10 key.Binding
	Max   key.Binding
	Min   key.Binding
	Play  key.Binding
	Save  key.Binding
	Open  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func binding(keys []string, desc string) key.Binding {
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	label := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		label[i] = k
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(label, "/"), desc))
}

func newKeyMap(binds map[config.Action][]string) keyMap {
	return keyMap{
		Up:    binding(binds[config.ActionUp], "up"),
		Down:  binding(binds[config.ActionDown], "down"),
		Left:  binding(binds[config.ActionLeft], "left"),
		Right: binding(binds[config.ActionRight], "right"),
		Inc:   binding(binds[config.ActionInc], "+1"),
		Dec:   binding(binds[config.ActionDec], "-1"),
		Inc10: binding(binds[config.ActionInc10], "+10"),
		Dec10: binding(binds[config.ActionDec10], "-10"),
		Max:   binding(binds[config.ActionMax], "max"),
		Min:   binding(binds[config.ActionMin], "min"),
		Play:  binding(binds[config.ActionPlay], "play"),
		Save:  binding(binds[config.ActionSave], "save"),
		Open:  binding(binds[config.ActionOpen], "open"),
		Help:  binding(binds[config.ActionHelp], "help"),
		Quit:  binding(binds[config.ActionQuit], "quit"),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Inc, k.Dec, k.Play, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Inc, k.Dec, k.Inc10, k.Dec10},
		{k.Max, k.Min, k.Play},
		{k.Save, k.Open, k.Help, k.Quit},
	}
}
