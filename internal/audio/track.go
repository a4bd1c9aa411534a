package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrEmptyTrack is returned when a file decodes to zero frames.
var ErrEmptyTrack = errors.New("track contains no audio")

// Track is a fully decoded audio file. It is immutable once loaded.
type Track struct {
	Name       string
	SampleRate int
	Channels   [][]float64 // planar, normalized to [-1, 1]
}

// NewTrack wraps already decoded planar samples.
func NewTrack(name string, sampleRate int, channels ...[]float64) *Track {
	return &Track{Name: name, SampleRate: sampleRate, Channels: channels}
}

// Frames returns the number of sample frames per channel.
func (t *Track) Frames() int {
	if t == nil || len(t.Channels) == 0 {
		return 0
	}
	return len(t.Channels[0])
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.SampleRate)
}

// Channel returns channel ch, falling back to the first channel for mono tracks.
func (t *Track) Channel(ch int) []float64 {
	if ch < len(t.Channels) {
		return t.Channels[ch]
	}
	return t.Channels[0]
}

// DecodeFile decodes an entire WAV, MP3 or FLAC file into memory.
func DecodeFile(filename string) (*Track, error) {
	dec, err := NewDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	channels, err := decodeAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(filename), err)
	}

	track := &Track{
		Name:       strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		SampleRate: dec.SampleRate(),
		Channels:   channels,
	}
	if track.Frames() == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), ErrEmptyTrack)
	}
	return track, nil
}
