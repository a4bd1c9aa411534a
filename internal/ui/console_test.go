package ui

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/engine"
	"github.com/linuxmatters/jivedeck/internal/preset"
)

func newTestModel(t *testing.T) (*Model, *engine.Engine) {
	t.Helper()
	e, err := engine.New(engine.Options{
		SampleRate: config.SampleRate,
		Rand:       rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return NewModel(e, Options{}), e
}

func toneTrack(name string, seconds float64) *audio.Track {
	n := int(seconds * config.SampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/config.SampleRate)
	}
	return audio.NewTrack(name, config.SampleRate, samples, samples)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

func deckView(t *testing.T, m *Model, id string) engine.DeckView {
	t.Helper()
	dv, ok := m.view(id)
	if !ok {
		t.Fatalf("no view for deck %s", id)
	}
	return dv
}

func TestRenderSpectrum(t *testing.T) {
	if got := renderSpectrum(nil, 10); got != "" {
		t.Errorf("empty bars rendered %q", got)
	}
	if got := renderSpectrum([]float64{1}, 0); got != "" {
		t.Errorf("zero width rendered %q", got)
	}

	out := renderSpectrum([]float64{0.25, 1.0}, 2)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if strings.Count(out, "█") != 2 {
		t.Errorf("full bar should fill both rows: %q", out)
	}
	if !strings.Contains(rows[1], "▄") {
		t.Errorf("quarter bar should be a half block on the bottom row: %q", rows[1])
	}
}

func TestFaderPosition(t *testing.T) {
	tests := []struct {
		x    float64
		want int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{-5, 0},
		{150, 20},
		{math.NaN(), 0},
	}
	for _, tc := range tests {
		if got := faderPosition(tc.x, 21); got != tc.want {
			t.Errorf("faderPosition(%v) = %d, want %d", tc.x, got, tc.want)
		}
	}
	if got := renderFader(50, 21); strings.Count(got, "●") != 1 {
		t.Errorf("fader should draw exactly one marker: %q", got)
	}
}

func TestStretch(t *testing.T) {
	got := stretch([]float64{0.1, 0.9}, 4)
	want := []float64{0.1, 0.1, 0.9, 0.9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stretch = %v, want %v", got, want)
		}
	}
	if got := stretch([]float64{0.1, 0.9}, 1); len(got) != 2 {
		t.Errorf("narrow width should keep bars, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept %q", got)
	}
	if got := truncate("a long track name", 6); got != "a lon…" {
		t.Errorf("truncate = %q, want %q", got, "a lon…")
	}
}

func TestPlayWithoutTrackReportsError(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if m.status.level != levelError {
		t.Errorf("status level = %v, want error", m.status.level)
	}
	if !strings.Contains(m.status.text, deck.ErrNoTrack.Error()) {
		t.Errorf("status = %q, want no track message", m.status.text)
	}
}

func TestVolumeKeysFollowSelection(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := deckView(t, m, "A").Volume; got != 95 {
		t.Errorf("deck A volume = %v, want 95", got)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := deckView(t, m, "B").Volume; got != 90 {
		t.Errorf("deck B volume = %v, want 90", got)
	}
	if got := deckView(t, m, "A").Volume; got != 95 {
		t.Errorf("deck A volume changed to %v", got)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := deckView(t, m, "B").Volume; got != 100 {
		t.Errorf("deck B volume = %v, want clamp at 100", got)
	}
}

func TestMixerKeys(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, runes(","))
	if m.frame.Crossfader != 45 {
		t.Errorf("crossfader = %v, want 45", m.frame.Crossfader)
	}
	press(t, m, runes("-"))
	if m.frame.Master != 95 {
		t.Errorf("master = %v, want 95", m.frame.Master)
	}
	press(t, m, runes("m"))
	if m.frame.Reverb != 5 {
		t.Errorf("reverb = %v, want 5", m.frame.Reverb)
	}
	press(t, m, runes("u"))
	if got := deckView(t, m, "A").EQ["high"]; got != 55 {
		t.Errorf("high EQ = %v, want 55", got)
	}
}

func TestEffectToggle(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, runes("r"))
	if m.frame.ReverbOn {
		t.Error("reverb should be off after toggle")
	}
	if m.status.text != "Reverb OFF" {
		t.Errorf("status = %q", m.status.text)
	}

	press(t, m, runes("d"))
	press(t, m, runes("d"))
	if !m.frame.DelayOn {
		t.Error("delay should be back on after two toggles")
	}
}

func TestLoadedMessage(t *testing.T) {
	m, e := newTestModel(t)

	if err := e.Load("A", toneTrack("Warmup", 1)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	press(t, m, loadedMsg{deck: "A", path: "warmup.wav"})

	if got := len(m.waves["A"]); got != waveWidth {
		t.Errorf("waveform columns = %d, want %d", got, waveWidth)
	}
	if m.status.level != levelOK || !strings.Contains(m.status.text, "Warmup") {
		t.Errorf("status = %+v, want loaded message", m.status)
	}
	if !deckView(t, m, "A").Loaded {
		t.Error("frame should show the loaded track")
	}

	press(t, m, loadedMsg{deck: "B", path: "bad.wav", err: errors.New("boom")})
	if m.status.level != levelError {
		t.Errorf("failed load status level = %v, want error", m.status.level)
	}
}

func TestEndOfTrackStatus(t *testing.T) {
	m, e := newTestModel(t)

	if err := e.Load("A", toneTrack("Short", 0.05)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Play("A"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.Render(make([]float64, config.SampleRate/10*config.Channels))

	cmd := press(t, m, frameMsg(time.Now()))
	if cmd == nil {
		t.Error("frame should schedule the next tick")
	}
	if !strings.Contains(m.status.text, "end of track") {
		t.Errorf("status = %q, want end of track", m.status.text)
	}
	if dv := deckView(t, m, "A"); dv.State != deck.Stopped || dv.Position != 0 {
		t.Errorf("deck after end = %v at %v, want stopped at 0", dv.State, dv.Position)
	}
}

func TestPresetCycle(t *testing.T) {
	m, e := newTestModel(t)

	custom := preset.Default(time.Now())
	custom.Name = "Club"
	custom.IsDefault = false
	custom.Labels = &preset.Labels{High: "Air", Mid: "Body", Low: "Sub"}

	press(t, m, presetsMsg{listing: preset.Listing{
		Entries:  []preset.Entry{{ID: preset.LocalPrefix + "0", Preset: custom}},
		Fallback: true,
	}})
	if m.status.level != levelWarn {
		t.Errorf("fallback listing status level = %v, want warning", m.status.level)
	}

	press(t, m, runes("p"))
	if got := e.Labels(); got.High != "Air" || got.Low != "Sub" {
		t.Errorf("labels = %+v, want preset labels", got)
	}
	if m.active["A"] != "Club" {
		t.Errorf("active preset = %q, want Club", m.active["A"])
	}
	if !strings.Contains(m.View(), "Air") {
		t.Error("view should show the preset band labels")
	}

	press(t, m, runes("P"))
	if got := e.Labels(); got != preset.DefaultLabels() {
		t.Errorf("labels after reset = %+v", got)
	}
	if len(m.active) != 0 {
		t.Errorf("active presets not cleared: %v", m.active)
	}
}

func TestPresetBrokenFormulaWarns(t *testing.T) {
	m, _ := newTestModel(t)

	broken := preset.Default(time.Now())
	broken.Name = "Broken"
	broken.VolumeCode = "value *"
	m.entries = []preset.Entry{{ID: "x", Preset: broken}}

	press(t, m, runes("p"))
	if m.status.level != levelWarn || !strings.Contains(m.status.text, "fallbacks") {
		t.Errorf("status = %+v, want fallback warning", m.status)
	}
}

func TestPresetsDisabled(t *testing.T) {
	m, _ := newTestModel(t)

	if cmd := press(t, m, runes("p")); cmd != nil {
		t.Error("no client should mean no fetch command")
	}
	if m.status.level != levelWarn {
		t.Errorf("status level = %v, want warning", m.status.level)
	}
}

func TestAutoSyncWithoutBPM(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, runes("a"))
	if m.status.level != levelWarn {
		t.Errorf("status = %+v, want BPM warning", m.status)
	}
}

func TestLoadPrompt(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	press(t, m, runes("f"))
	if !m.prompt {
		t.Fatal("f should open the load prompt")
	}
	press(t, m, runes("missing.wav"))
	if m.frame.Crossfader != config.DefaultCrossfader {
		t.Error("keys typed into the prompt must not reach the console")
	}

	cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt {
		t.Error("enter should close the prompt")
	}
	if cmd == nil {
		t.Fatal("enter should start a load")
	}
	msg, ok := cmd().(loadedMsg)
	if !ok {
		t.Fatalf("load command returned %T", cmd())
	}
	if msg.deck != "B" || msg.path != "missing.wav" || msg.err == nil {
		t.Errorf("loadedMsg = %+v, want failed load of missing.wav on B", msg)
	}
}

func TestPromptEscape(t *testing.T) {
	m, _ := newTestModel(t)

	press(t, m, runes("f"))
	if cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("escape should not start a load")
	}
	if m.prompt {
		t.Error("escape should close the prompt")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewShowsBothDecks(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	for _, want := range []string{"DECK A", "DECK B", "No track loaded", "Reverb", "Delay", "Master"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
