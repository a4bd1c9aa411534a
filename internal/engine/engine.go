// Package engine ties the decks, mixer and audio graph together behind a
// single lock. Every control operation, Frame and Render take that lock, so
// transport changes, parameter writes and block rendering never interleave.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/clock"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/graph"
	"github.com/linuxmatters/jivedeck/internal/mixer"
	"github.com/linuxmatters/jivedeck/internal/preset"
	"github.com/linuxmatters/jivedeck/internal/script"
)

// ErrUnknownDeck is returned for deck ids other than the configured ones.
var ErrUnknownDeck = errors.New("unknown deck")

// Bands are the EQ band names, top to bottom.
var Bands = []string{"high", "mid", "low"}

// Options configure a new engine.
type Options struct {
	SampleRate int
	// Rand seeds the reverb impulse noise. Nil picks a random seed.
	Rand *rand.Rand
	// Tap receives the interleaved master output when a consumer is attached.
	Tap *audio.SharedAudioBuffer
}

type bindingKey struct {
	deck string
	kind script.Kind
}

// effect is the shared state of one effect send across both decks.
type effect struct {
	enabled bool
	value   float64 // slider in [0, 100]
}

// Engine is the console core.
type Engine struct {
	mu sync.Mutex

	clock *clock.SampleClock
	graph *graph.Graph
	mixer *mixer.Mixer
	tap   *audio.SharedAudioBuffer

	ids   []string
	decks map[string]*deck.Deck
	eq    map[string]map[string]float64 // deck -> band -> slider

	reverb effect
	delay  effect

	bindings map[bindingKey]script.SliderTransform
	labels   preset.Labels

	block [][]float64
}

// New builds the graph for every deck and applies the default mix.
func New(opts Options) (*Engine, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = config.SampleRate
	}

	e := &Engine{
		clock:    clock.NewSampleClock(opts.SampleRate),
		graph:    graph.New(opts.SampleRate, opts.Rand),
		tap:      opts.Tap,
		ids:      config.DeckIDs,
		decks:    make(map[string]*deck.Deck, len(config.DeckIDs)),
		eq:       make(map[string]map[string]float64, len(config.DeckIDs)),
		reverb:   effect{enabled: true},
		delay:    effect{enabled: true},
		bindings: make(map[bindingKey]script.SliderTransform),
		labels:   preset.DefaultLabels(),
	}

	for _, id := range e.ids {
		dg, err := e.graph.BuildDeck(id)
		if err != nil {
			return nil, fmt.Errorf("building deck %s: %w", id, err)
		}
		e.decks[id] = deck.New(id, e.clock, voiceStarter{dg})
		e.eq[id] = map[string]float64{"high": 50, "mid": 50, "low": 50}
	}
	e.mixer = mixer.New(e.graph)
	return e, nil
}

// voiceStarter starts buffer sources on a deck's chain.
type voiceStarter struct {
	g *graph.DeckGraph
}

func (v voiceStarter) StartVoice(track *audio.Track, offset, rate float64) deck.Voice {
	return v.g.Start(track, offset, rate)
}

// DeckIDs returns the deck identifiers in slot order.
func (e *Engine) DeckIDs() []string {
	return e.ids
}

// Clock returns the engine's audio clock.
func (e *Engine) Clock() clock.Source {
	return e.clock
}

func (e *Engine) deck(id string) (*deck.Deck, error) {
	d, ok := e.decks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeck, id)
	}
	return d, nil
}

// Load puts an already decoded track on a deck. Tempo detection runs
// before the engine lock is taken so rendering carries on meanwhile.
func (e *Engine) Load(id string, track *audio.Track) error {
	if track == nil || track.Frames() == 0 {
		return audio.ErrEmptyTrack
	}
	bpm := audio.DetectBPM(track.Channel(0), track.SampleRate)

	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.deck(id)
	if err != nil {
		return err
	}
	return d.LoadAnalyzed(track, bpm)
}

// LoadFile decodes path without holding the engine lock, then loads it.
func (e *Engine) LoadFile(id string, path string) error {
	track, err := audio.DecodeFile(path)
	if err != nil {
		log.Printf("deck %s: load failed: %v", id, err)
		return fmt.Errorf("loading deck %s: %w", id, err)
	}
	return e.Load(id, track)
}

// withDeck runs fn on deck id under the engine lock.
func (e *Engine) withDeck(id string, fn func(*deck.Deck) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.deck(id)
	if err != nil {
		return err
	}
	return fn(d)
}

// Play starts a deck.
func (e *Engine) Play(id string) error {
	return e.withDeck(id, (*deck.Deck).Play)
}

// Stop halts a deck.
func (e *Engine) Stop(id string) error {
	return e.withDeck(id, func(d *deck.Deck) error {
		d.Stop()
		return nil
	})
}

// TogglePlay flips a deck between playing and stopped.
func (e *Engine) TogglePlay(id string) error {
	return e.withDeck(id, (*deck.Deck).TogglePlay)
}

// Seek moves a deck to t seconds.
func (e *Engine) Seek(id string, t float64) error {
	return e.withDeck(id, func(d *deck.Deck) error { return d.Seek(t) })
}

// Nudge seeks a deck relative to its current position.
func (e *Engine) Nudge(id string, delta float64) error {
	return e.withDeck(id, func(d *deck.Deck) error { return d.Seek(d.Position() + delta) })
}

// SeekFraction moves a deck to a fraction of its track.
func (e *Engine) SeekFraction(id string, f float64) error {
	return e.withDeck(id, func(d *deck.Deck) error { return d.SeekFraction(f) })
}

// SetCue stores a deck's current position as its cue point.
func (e *Engine) SetCue(id string) error {
	return e.withDeck(id, func(d *deck.Deck) error {
		d.SetCue()
		return nil
	})
}

// ReturnToCue seeks a deck back to its cue point.
func (e *Engine) ReturnToCue(id string) error {
	return e.withDeck(id, (*deck.Deck).ReturnToCue)
}

// SetTempo sets a deck's playback rate ratio.
func (e *Engine) SetTempo(id string, ratio float64) error {
	return e.withDeck(id, func(d *deck.Deck) error { return d.SetTempo(ratio) })
}

// AutoSync matches both decks to the faster BPM.
func (e *Engine) AutoSync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return deck.AutoSync(e.decks[e.ids[0]], e.decks[e.ids[1]])
}

// Peaks returns min/max waveform columns for a deck's loaded track.
func (e *Engine) Peaks(id string, width int) []audio.Peak {
	e.mu.Lock()
	d, err := e.deck(id)
	var track *audio.Track
	if err == nil {
		track = d.Track()
	}
	e.mu.Unlock()

	// Tracks are immutable once loaded
	if track == nil {
		return nil
	}
	return audio.WaveformPeaks(track.Channel(0), width)
}

// Render fills out with interleaved stereo master output and advances the
// clock by the rendered frames. len(out) must be a multiple of the channel
// count.
func (e *Engine) Render(out []float64) {
	n := len(out) / config.Channels
	if n == 0 {
		return
	}

	e.mu.Lock()
	if len(e.block) == 0 || len(e.block[0]) < n {
		e.block = make([][]float64, config.Channels)
		for ch := range e.block {
			e.block[ch] = make([]float64, n)
		}
	}
	e.graph.Render(e.block, n)
	for i := 0; i < n; i++ {
		for ch := 0; ch < config.Channels; ch++ {
			out[i*config.Channels+ch] = e.block[ch][i]
		}
	}
	e.clock.Advance(n)
	e.mu.Unlock()

	if e.tap != nil && e.tap.Attached() {
		if err := e.tap.Write(out); err != nil && !errors.Is(err, audio.ErrBufferClosed) {
			log.Printf("engine: tap write: %v", err)
		}
	}
}
