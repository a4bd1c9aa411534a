// Package deck implements the per-deck transport: play, stop, seek, cue and
// tempo, with positions derived from an anchor on the engine clock.
package deck

import (
	"errors"
	"log"
	"math"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/clock"
)

var (
	// ErrNoTrack is returned by transport operations on an empty deck.
	ErrNoTrack = errors.New("no track loaded")
	// ErrInvalidTempo is returned when a tempo ratio is not a positive finite number.
	ErrInvalidTempo = errors.New("tempo must be a positive finite ratio")
)

// State is the transport state of a deck.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Voice is the active playback node of a deck.
type Voice interface {
	SetRate(rate float64)
	Stop()
}

// VoiceStarter starts voices on a deck's signal chain.
type VoiceStarter interface {
	StartVoice(track *audio.Track, offset, rate float64) Voice
}

// Deck is one playback lane. It is not safe for concurrent use.
type Deck struct {
	id     string
	clock  clock.Source
	voices VoiceStarter

	track    *audio.Track
	state    State
	position float64
	cue      float64
	tempo    float64
	bpm      int

	anchorClock    float64
	anchorPosition float64
	voice          Voice
}

// New creates an empty, stopped deck.
func New(id string, clk clock.Source, voices VoiceStarter) *Deck {
	return &Deck{
		id:     id,
		clock:  clk,
		voices: voices,
		tempo:  1.0,
	}
}

// ID returns the deck identifier.
func (d *Deck) ID() string { return d.id }

// Track returns the loaded track, or nil.
func (d *Deck) Track() *audio.Track { return d.track }

// State returns the transport state.
func (d *Deck) State() State { return d.state }

// Tempo returns the playback rate ratio.
func (d *Deck) Tempo() float64 { return d.tempo }

// BPM returns the detected tempo, or 0 when nothing is loaded.
func (d *Deck) BPM() int { return d.bpm }

// Cue returns the cue point in seconds.
func (d *Deck) Cue() float64 { return d.cue }

// Duration returns the loaded track length in seconds.
func (d *Deck) Duration() float64 {
	if d.track == nil {
		return 0
	}
	return d.track.Duration()
}

// Load replaces the deck's track. Playback is stopped first and position
// and cue return to the start. Tempo is kept.
func (d *Deck) Load(track *audio.Track) error {
	if track == nil || track.Frames() == 0 {
		return audio.ErrEmptyTrack
	}
	return d.LoadAnalyzed(track, audio.DetectBPM(track.Channel(0), track.SampleRate))
}

// LoadAnalyzed is Load with the tempo already detected.
func (d *Deck) LoadAnalyzed(track *audio.Track, bpm int) error {
	if track == nil || track.Frames() == 0 {
		return audio.ErrEmptyTrack
	}
	d.Stop()

	d.track = track
	d.position = 0
	d.cue = 0
	d.bpm = bpm
	log.Printf("deck %s: loaded %q (%.1fs, ~%d BPM)", d.id, track.Name, track.Duration(), d.bpm)
	return nil
}

// Play starts playback from the current position.
func (d *Deck) Play() error {
	if d.track == nil {
		log.Printf("deck %s: no track loaded", d.id)
		return ErrNoTrack
	}
	if d.state == Playing {
		return nil
	}

	d.anchorClock = d.clock.Now()
	d.anchorPosition = d.position
	d.voice = d.voices.StartVoice(d.track, d.position, d.tempo)
	d.state = Playing
	return nil
}

// Stop halts playback and freezes the current position.
func (d *Deck) Stop() {
	if d.state != Playing {
		return
	}
	d.position = d.clampPosition(d.livePosition())
	if d.voice != nil {
		d.voice.Stop()
		d.voice = nil
	}
	d.state = Stopped
}

// TogglePlay stops a playing deck or starts a stopped one.
func (d *Deck) TogglePlay() error {
	if d.state == Playing {
		d.Stop()
		return nil
	}
	return d.Play()
}

// Seek moves to t seconds, clamped into the track. A playing deck restarts
// at the new position.
func (d *Deck) Seek(t float64) error {
	if d.track == nil {
		log.Printf("deck %s: seek ignored, no track loaded", d.id)
		return ErrNoTrack
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = d.clampPosition(t)

	if d.state == Playing {
		d.Stop()
		d.position = t
		return d.Play()
	}
	d.position = t
	return nil
}

// SeekFraction seeks to a fraction of the track length.
func (d *Deck) SeekFraction(f float64) error {
	return d.Seek(f * d.Duration())
}

// SetCue stores the current position as the cue point.
func (d *Deck) SetCue() {
	d.cue = d.Position()
}

// ReturnToCue seeks back to the cue point.
func (d *Deck) ReturnToCue() error {
	return d.Seek(d.cue)
}

// SetTempo changes the playback rate. A playing voice follows immediately;
// the anchor is left where it is.
func (d *Deck) SetTempo(ratio float64) error {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		log.Printf("deck %s: ignoring tempo %v", d.id, ratio)
		return ErrInvalidTempo
	}
	d.tempo = ratio
	if d.voice != nil {
		d.voice.SetRate(ratio)
	}
	return nil
}

// Tick refreshes the position from the clock and stops the deck at the end
// of the track. It reports whether the track ended on this tick.
func (d *Deck) Tick() bool {
	if d.state != Playing {
		return false
	}
	pos := d.livePosition()
	if pos >= d.Duration() {
		d.Stop()
		d.position = 0
		return true
	}
	d.position = d.clampPosition(pos)
	return false
}

// Position returns the current position in seconds, always within the track.
func (d *Deck) Position() float64 {
	if d.state == Playing {
		return d.clampPosition(d.livePosition())
	}
	return d.position
}

func (d *Deck) livePosition() float64 {
	return d.clock.Now() - d.anchorClock + d.anchorPosition
}

func (d *Deck) clampPosition(t float64) float64 {
	return math.Max(0, math.Min(t, d.Duration()))
}

// Snapshot is a read-only view of a deck for display.
type Snapshot struct {
	ID        string
	Name      string
	Loaded    bool
	State     State
	Position  float64
	Duration  float64
	Remaining float64
	Percent   float64
	Cue       float64
	Tempo     float64
	BPM       int
}

// Snapshot returns the deck's current display values.
func (d *Deck) Snapshot() Snapshot {
	s := Snapshot{
		ID:       d.id,
		State:    d.state,
		Position: d.Position(),
		Duration: d.Duration(),
		Cue:      d.cue,
		Tempo:    d.tempo,
		BPM:      d.bpm,
	}
	if d.track != nil {
		s.Loaded = true
		s.Name = d.track.Name
		s.Remaining = s.Duration - s.Position
		if s.Duration > 0 {
			s.Percent = s.Position / s.Duration * 100
		}
	}
	return s
}
