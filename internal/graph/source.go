package graph

import (
	"math"

	"github.com/linuxmatters/jivedeck/internal/audio"
)

// BufferSource plays a decoded track from an offset at a variable rate.
// It resamples with linear interpolation when the track and engine rates
// differ. Once stopped or past the end it only produces silence.
type BufferSource struct {
	track *audio.Track
	step  float64 // source frames per output frame at rate 1
	rate  *Param

	pos     float64 // fractional source frame
	stopped bool
}

// NewBufferSource creates a source for track rendered at engineRate.
func NewBufferSource(track *audio.Track, engineRate int) *BufferSource {
	return &BufferSource{
		track: track,
		step:  float64(track.SampleRate) / float64(engineRate),
		rate:  NewParam("playbackRate", 1, 0, math.Inf(1)),
	}
}

// frameSnap absorbs float error when an offset converts back to a whole frame.
const frameSnap = 1e-6

// Start positions playback at offset seconds into the track.
func (s *BufferSource) Start(offset float64) {
	pos := math.Max(0, offset*float64(s.track.SampleRate))
	if r := math.Round(pos); math.Abs(pos-r) < frameSnap {
		pos = r
	}
	s.pos = pos
	s.stopped = false
}

// PlaybackRate returns the rate parameter.
func (s *BufferSource) PlaybackRate() *Param { return s.rate }

// Param implements Node.
func (s *BufferSource) Param(name string) *Param {
	if name == "playbackRate" {
		return s.rate
	}
	return nil
}

// SetRate changes the playback rate immediately.
func (s *BufferSource) SetRate(r float64) { s.rate.Set(r) }

// Stop silences the source permanently.
func (s *BufferSource) Stop() { s.stopped = true }

// Ended reports whether the source has stopped or run out of data.
func (s *BufferSource) Ended() bool {
	return s.stopped || s.pos >= float64(s.track.Frames())
}

// Position returns the current read position in seconds of track time.
func (s *BufferSource) Position() float64 {
	return s.pos / float64(s.track.SampleRate)
}

// Render overwrites n frames of out with the next block of playback.
func (s *BufferSource) Render(out [][]float64, n int) {
	frames := s.track.Frames()
	inc := s.step * s.rate.Value()

	for i := 0; i < n; i++ {
		if s.stopped || s.pos >= float64(frames) {
			for _, ch := range out {
				ch[i] = 0
			}
			continue
		}

		idx := int(s.pos)
		frac := s.pos - float64(idx)
		next := idx + 1
		for c, ch := range out {
			src := s.track.Channel(c)
			v := src[idx]
			if frac > 0 && next < frames {
				v += (src[next] - v) * frac
			}
			ch[i] = v
		}
		s.pos += inc
	}
}
