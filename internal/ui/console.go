package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/engine"
	"github.com/linuxmatters/jivedeck/internal/preset"
)

// Slider steps per key press
const (
	sliderStep = 5.0
	tempoStep  = 0.01
	nudgeStep  = 5.0
	minTempo   = 0.5
	maxTempo   = 2.0
	waveWidth  = 48
)

// Options configure the console.
type Options struct {
	Tracks  map[string]string // deck id -> file loaded at startup
	Presets *preset.Client    // nil disables presets
	Monitor string            // monitor stream address shown in the header
}

// frameMsg drives the render loop.
type frameMsg time.Time

// loadedMsg reports the end of an asynchronous file load.
type loadedMsg struct {
	deck string
	path string
	err  error
}

// presetsMsg carries the preset listing.
type presetsMsg struct {
	listing preset.Listing
	err     error
}

type status struct {
	text  string
	level level
}

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelError
)

// Model is the console's bubbletea model.
type Model struct {
	engine  *engine.Engine
	presets *preset.Client
	opts    Options

	help  help.Model
	bar   progress.Model
	input textinput.Model

	frame    engine.Frame
	selected int
	prompt   bool
	waves    map[string][]audio.Peak

	entries     []preset.Entry
	presetIndex int
	fallback    bool
	active      map[string]string // deck id -> applied preset name

	status status
	width  int
	height int
}

// NewModel creates a console for e.
func NewModel(e *engine.Engine, opts Options) *Model {
	bar := progress.New(
		progress.WithGradient(string(deckAmber), string(deckGold)),
		progress.WithWidth(waveWidth),
		progress.WithoutPercentage(),
	)

	ti := textinput.New()
	ti.Placeholder = "~/Music/track.mp3"
	ti.CharLimit = 4096
	ti.Width = 60

	m := &Model{
		engine:      e,
		presets:     opts.Presets,
		opts:        opts,
		help:        help.New(),
		bar:         bar,
		input:       ti,
		waves:       make(map[string][]audio.Peak),
		active:      make(map[string]string),
		presetIndex: -1,
		status:      status{text: "Ready"},
	}
	m.frame = e.Frame()
	return m
}

// Init starts the render loop and any startup loads.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	for _, id := range m.engine.DeckIDs() {
		if path := m.opts.Tracks[id]; path != "" {
			cmds = append(cmds, m.load(id, path))
		}
	}
	if m.presets != nil {
		cmds = append(cmds, m.listPresets())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/config.FPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// load decodes off the UI goroutine; only the final swap takes the engine lock.
func (m *Model) load(id, path string) tea.Cmd {
	e := m.engine
	return func() tea.Msg {
		return loadedMsg{deck: id, path: path, err: e.LoadFile(id, path)}
	}
}

func (m *Model) listPresets() tea.Cmd {
	c := m.presets
	return func() tea.Msg {
		listing, err := c.List(context.Background())
		return presetsMsg{listing: listing, err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(12, min(msg.Width/2-12, waveWidth))
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.frame = m.engine.Frame()
		for _, id := range m.frame.Ended {
			m.setStatus(levelInfo, "Deck %s: end of track", id)
		}
		return m, tick()

	case loadedMsg:
		if msg.err != nil {
			m.setStatus(levelError, "Deck %s: %v", msg.deck, msg.err)
			return m, nil
		}
		m.waves[msg.deck] = m.engine.Peaks(msg.deck, waveWidth)
		m.refresh()
		name := msg.path
		if dv, ok := m.view(msg.deck); ok {
			name = dv.Name
			if dv.BPM > 0 {
				name = fmt.Sprintf("%s (%d BPM)", name, dv.BPM)
			}
		}
		m.setStatus(levelOK, "Deck %s: loaded %s", msg.deck, name)
		return m, nil

	case presetsMsg:
		if msg.err != nil {
			m.setStatus(levelError, "Presets unavailable: %v", msg.err)
			return m, nil
		}
		m.entries = msg.listing.Entries
		m.fallback = msg.listing.Fallback
		if m.fallback {
			m.setStatus(levelWarn, "Preset service unreachable, using %d local presets", len(m.entries))
		} else {
			m.setStatus(levelInfo, "%d presets available", len(m.entries))
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompt {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompt = false
		m.input.Blur()
		path := m.input.Value()
		m.input.SetValue("")
		if path == "" {
			return m, nil
		}
		id := m.deckID()
		m.setStatus(levelInfo, "Deck %s: loading %s", id, path)
		return m, m.load(id, path)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deckID()
	dv, _ := m.view(id)

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Switch):
		m.selected = (m.selected + 1) % len(m.engine.DeckIDs())
		return m, nil
	case key.Matches(msg, keys.DeckA):
		m.selected = 0
		return m, nil
	case key.Matches(msg, keys.DeckB):
		m.selected = min(1, len(m.engine.DeckIDs())-1)
		return m, nil
	case key.Matches(msg, keys.Open):
		m.prompt = true
		return m, m.input.Focus()

	case key.Matches(msg, keys.Play):
		m.report(id, m.engine.TogglePlay(id))
	case key.Matches(msg, keys.Stop):
		m.report(id, m.engine.Stop(id))
	case key.Matches(msg, keys.SetCue):
		m.report(id, m.engine.SetCue(id))
	case key.Matches(msg, keys.ToCue):
		m.report(id, m.engine.ReturnToCue(id))
	case key.Matches(msg, keys.Back):
		m.report(id, m.engine.Nudge(id, -nudgeStep))
	case key.Matches(msg, keys.Forward):
		m.report(id, m.engine.Nudge(id, nudgeStep))
	case key.Matches(msg, keys.TempoDown):
		m.report(id, m.engine.SetTempo(id, max(minTempo, dv.Tempo-tempoStep)))
	case key.Matches(msg, keys.TempoUp):
		m.report(id, m.engine.SetTempo(id, min(maxTempo, dv.Tempo+tempoStep)))
	case key.Matches(msg, keys.VolumeUp):
		m.report(id, m.engine.SetVolume(id, dv.Volume+sliderStep))
	case key.Matches(msg, keys.VolumeDown):
		m.report(id, m.engine.SetVolume(id, dv.Volume-sliderStep))
	case key.Matches(msg, keys.HighUp):
		m.report(id, m.engine.SetEQ(id, "high", dv.EQ["high"]+sliderStep))
	case key.Matches(msg, keys.HighDown):
		m.report(id, m.engine.SetEQ(id, "high", dv.EQ["high"]-sliderStep))
	case key.Matches(msg, keys.MidUp):
		m.report(id, m.engine.SetEQ(id, "mid", dv.EQ["mid"]+sliderStep))
	case key.Matches(msg, keys.MidDown):
		m.report(id, m.engine.SetEQ(id, "mid", dv.EQ["mid"]-sliderStep))
	case key.Matches(msg, keys.LowUp):
		m.report(id, m.engine.SetEQ(id, "low", dv.EQ["low"]+sliderStep))
	case key.Matches(msg, keys.LowDown):
		m.report(id, m.engine.SetEQ(id, "low", dv.EQ["low"]-sliderStep))

	case key.Matches(msg, keys.FadeLeft):
		m.engine.SetCrossfader(m.frame.Crossfader - sliderStep)
	case key.Matches(msg, keys.FadeRight):
		m.engine.SetCrossfader(m.frame.Crossfader + sliderStep)
	case key.Matches(msg, keys.MasterDown):
		m.engine.SetMaster(m.frame.Master - sliderStep)
	case key.Matches(msg, keys.MasterUp):
		m.engine.SetMaster(m.frame.Master + sliderStep)
	case key.Matches(msg, keys.ReverbDown):
		m.engine.SetReverb(m.frame.Reverb - sliderStep)
	case key.Matches(msg, keys.ReverbUp):
		m.engine.SetReverb(m.frame.Reverb + sliderStep)
	case key.Matches(msg, keys.Reverb):
		m.setStatus(levelInfo, "Reverb %s", onOff(m.engine.ToggleReverb()))
	case key.Matches(msg, keys.DelayDown):
		m.engine.SetDelay(m.frame.Delay - sliderStep)
	case key.Matches(msg, keys.DelayUp):
		m.engine.SetDelay(m.frame.Delay + sliderStep)
	case key.Matches(msg, keys.Delay):
		m.setStatus(levelInfo, "Delay %s", onOff(m.engine.ToggleDelay()))

	case key.Matches(msg, keys.Sync):
		m.autoSync()
	case key.Matches(msg, keys.Preset):
		return m, m.nextPreset(id)
	case key.Matches(msg, keys.Reset):
		m.engine.ResetFormulas()
		clear(m.active)
		m.setStatus(levelInfo, "Formulas reset to the standard mappings")
	default:
		return m, nil
	}

	m.refresh()
	return m, nil
}

func (m *Model) autoSync() {
	err := m.engine.AutoSync()
	switch {
	case errors.Is(err, deck.ErrNoBPM):
		m.setStatus(levelWarn, "Auto sync needs a detected BPM on both decks")
	case err != nil:
		m.setStatus(levelError, "Auto sync: %v", err)
	default:
		m.setStatus(levelOK, "Decks synced")
	}
}

// nextPreset applies the next listed preset to deck id. With no listing yet
// it asks the client for one.
func (m *Model) nextPreset(id string) tea.Cmd {
	if len(m.entries) == 0 {
		if m.presets == nil {
			m.setStatus(levelWarn, "Presets are disabled")
			return nil
		}
		m.setStatus(levelInfo, "Fetching presets")
		return m.listPresets()
	}

	m.presetIndex = (m.presetIndex + 1) % len(m.entries)
	entry := m.entries[m.presetIndex]
	m.active[id] = entry.Preset.Name
	if err := m.engine.ApplyPreset(id, entry.Preset); err != nil {
		m.setStatus(levelWarn, "Deck %s: preset %q has formula errors, using fallbacks", id, entry.Preset.Name)
	} else {
		m.setStatus(levelOK, "Deck %s: preset %q applied", id, entry.Preset.Name)
	}
	m.refresh()
	return nil
}

func (m *Model) report(id string, err error) {
	if err != nil {
		m.setStatus(levelError, "Deck %s: %v", id, err)
	}
}

func (m *Model) setStatus(l level, format string, args ...any) {
	m.status = status{text: fmt.Sprintf(format, args...), level: l}
}

// refresh redraws from a fresh frame without waiting for the next tick.
func (m *Model) refresh() {
	m.frame = m.engine.Frame()
}

func (m *Model) deckID() string {
	return m.engine.DeckIDs()[m.selected]
}

func (m *Model) view(id string) (engine.DeckView, bool) {
	for _, dv := range m.frame.Decks {
		if dv.ID == id {
			return dv, true
		}
	}
	return engine.DeckView{}, false
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
