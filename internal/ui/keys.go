package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every console binding. Deck controls act on the selected deck.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Switch     key.Binding
	DeckA      key.Binding
	DeckB      key.Binding
	Open       key.Binding
	Play       key.Binding
	Stop       key.Binding
	SetCue     key.Binding
	ToCue      key.Binding
	Back       key.Binding
	Forward    key.Binding
	TempoDown  key.Binding
	TempoUp    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	HighUp     key.Binding
	HighDown   key.Binding
	MidUp      key.Binding
	MidDown    key.Binding
	LowUp      key.Binding
	LowDown    key.Binding
	FadeLeft   key.Binding
	FadeRight  key.Binding
	MasterDown key.Binding
	MasterUp   key.Binding
	ReverbDown key.Binding
	ReverbUp   key.Binding
	Reverb     key.Binding
	DelayDown  key.Binding
	DelayUp    key.Binding
	Delay      key.Binding
	Sync       key.Binding
	Preset     key.Binding
	Reset      key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Switch:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch deck")),
	DeckA:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "deck A")),
	DeckB:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "deck B")),
	Open:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "load file")),
	Play:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	SetCue:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "set cue")),
	ToCue:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "to cue")),
	Back:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back 5s")),
	Forward:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "fwd 5s")),
	TempoDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "tempo -")),
	TempoUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "tempo +")),
	VolumeUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "volume +")),
	VolumeDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "volume -")),
	HighUp:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u/j", "high")),
	HighDown:   key.NewBinding(key.WithKeys("j")),
	MidUp:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i/k", "mid")),
	MidDown:    key.NewBinding(key.WithKeys("k")),
	LowUp:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o/l", "low")),
	LowDown:    key.NewBinding(key.WithKeys("l")),
	FadeLeft:   key.NewBinding(key.WithKeys(","), key.WithHelp(",/.", "crossfader")),
	FadeRight:  key.NewBinding(key.WithKeys(".")),
	MasterDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-/=", "master")),
	MasterUp:   key.NewBinding(key.WithKeys("=")),
	ReverbDown: key.NewBinding(key.WithKeys("n"), key.WithHelp("n/m", "reverb")),
	ReverbUp:   key.NewBinding(key.WithKeys("m")),
	Reverb:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverb on/off")),
	DelayDown:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v/b", "delay")),
	DelayUp:    key.NewBinding(key.WithKeys("b")),
	Delay:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delay on/off")),
	Sync:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto sync")),
	Preset:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next preset")),
	Reset:      key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "reset formulas")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Switch, k.Sync, k.Preset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.SetCue, k.ToCue, k.Back, k.Forward},
		{k.TempoDown, k.TempoUp, k.VolumeUp, k.VolumeDown, k.Sync},
		{k.HighUp, k.MidUp, k.LowUp, k.FadeLeft, k.MasterDown},
		{k.ReverbDown, k.Reverb, k.DelayDown, k.Delay},
		{k.Switch, k.DeckA, k.DeckB, k.Open, k.Preset, k.Reset, k.Quit},
	}
}
