// Package mixer holds the global mix state: crossfader, per-deck volume and
// master level, and writes the resulting gains into the audio graph.
package mixer

import (
	"math"

	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/graph"
)

// ComputeGains returns the equal-power crossfade gains for a crossfader
// value in [0, 100]: 0 is all deck A, 100 all deck B.
func ComputeGains(crossfader float64) (a, b float64) {
	n := clamp(crossfader, 0, 100) / 100
	return math.Cos(n * math.Pi / 2), math.Sin(n * math.Pi / 2)
}

// EQGain maps an EQ slider in [0, 100] to a filter gain in dB.
func EQGain(slider float64) float64 {
	return (clamp(slider, 0, 100) - 50) / 2
}

// Mixer applies mix state to a graph. It is not safe for concurrent use.
type Mixer struct {
	graph      *graph.Graph
	crossfader float64
	master     float64
	volumes    map[string]float64
}

// New creates a mixer with default levels and applies them to g.
func New(g *graph.Graph) *Mixer {
	m := &Mixer{
		graph:      g,
		crossfader: config.DefaultCrossfader,
		master:     config.DefaultMasterLevel,
		volumes:    make(map[string]float64, len(config.DeckIDs)),
	}
	for _, id := range config.DeckIDs {
		m.volumes[id] = config.DefaultDeckVolume
	}
	m.apply()
	return m
}

// Crossfader returns the crossfader position in [0, 100].
func (m *Mixer) Crossfader() float64 { return m.crossfader }

// Master returns the master level slider in [0, 100].
func (m *Mixer) Master() float64 { return m.master }

// Volume returns a deck's volume slider in [0, 100].
func (m *Mixer) Volume(id string) float64 {
	if v, ok := m.volumes[id]; ok {
		return v
	}
	return config.DefaultDeckVolume
}

// SetCrossfader moves the crossfader and updates both deck gains.
func (m *Mixer) SetCrossfader(x float64) {
	m.crossfader = clamp(x, 0, 100)
	m.applyDecks()
}

// SetVolume sets a deck's volume slider and recomputes its gain with the
// current crossfade curve.
func (m *Mixer) SetVolume(id string, v float64) {
	m.volumes[id] = clamp(v, 0, 100)
	m.applyDecks()
}

// SetMaster sets the master level slider.
func (m *Mixer) SetMaster(v float64) {
	m.master = clamp(v, 0, 100)
	m.graph.Master().Gain().Set(m.master / 100)
}

// DeckGain returns the output gain the mixer wants for a deck.
func (m *Mixer) DeckGain(id string) float64 {
	a, b := ComputeGains(m.crossfader)
	curve := a
	if id != config.DeckIDs[0] {
		curve = b
	}
	return curve * m.Volume(id) / 100
}

func (m *Mixer) apply() {
	m.applyDecks()
	m.graph.Master().Gain().Set(m.master / 100)
}

func (m *Mixer) applyDecks() {
	for _, id := range config.DeckIDs {
		if d := m.graph.Deck(id); d != nil {
			d.Output.Gain().Set(m.DeckGain(id))
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
