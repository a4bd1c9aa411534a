package engine

import (
	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/preset"
)

// DeckView is a deck snapshot plus its mixer and EQ slider values.
type DeckView struct {
	deck.Snapshot
	Volume float64
	Gain   float64 // effective deck output gain
	EQ     map[string]float64
}

// Frame is everything the console needs to draw one frame.
type Frame struct {
	Time       float64
	Decks      []DeckView
	Ended      []string // decks that reached the end of their track this frame
	Spectrum   []float64
	Crossfader float64
	Master     float64
	Reverb     float64
	ReverbOn   bool
	Delay      float64
	DelayOn    bool
	Labels     preset.Labels
}

// Frame ticks every deck against the clock, then snapshots the console.
// All decks are ticked before any snapshot is taken.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := Frame{
		Time:       e.clock.Now(),
		Crossfader: e.mixer.Crossfader(),
		Master:     e.mixer.Master(),
		Reverb:     e.reverb.value,
		ReverbOn:   e.reverb.enabled,
		Delay:      e.delay.value,
		DelayOn:    e.delay.enabled,
		Labels:     e.labels,
	}

	for _, id := range e.ids {
		if e.decks[id].Tick() {
			f.Ended = append(f.Ended, id)
		}
	}

	f.Decks = make([]DeckView, 0, len(e.ids))
	for _, id := range e.ids {
		eq := make(map[string]float64, len(e.eq[id]))
		for band, v := range e.eq[id] {
			eq[band] = v
		}
		f.Decks = append(f.Decks, DeckView{
			Snapshot: e.decks[id].Snapshot(),
			Volume:   e.mixer.Volume(id),
			Gain:     e.graph.Deck(id).Output.Gain().Value(),
			EQ:       eq,
		})
	}

	f.Spectrum = audio.BinBars(e.graph.Analyser().ByteFrequencyData(), config.SpectrumBars)
	return f
}
