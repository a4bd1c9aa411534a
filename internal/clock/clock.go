// Package clock provides the monotonic time source that deck positions are
// derived from.
package clock

import (
	"sync/atomic"
)

// Source reports a monotonically increasing time in seconds.
type Source interface {
	Now() float64
}

// SampleClock is an audio clock: it only advances when frames are rendered,
// so positions derived from it stay in step with what has been played.
type SampleClock struct {
	sampleRate int
	frames     atomic.Int64
}

// NewSampleClock creates a clock for the given sample rate starting at zero.
func NewSampleClock(sampleRate int) *SampleClock {
	return &SampleClock{sampleRate: sampleRate}
}

// Advance moves the clock forward by n rendered frames.
func (c *SampleClock) Advance(n int) {
	if n > 0 {
		c.frames.Add(int64(n))
	}
}

// Frames returns the total number of frames rendered.
func (c *SampleClock) Frames() int64 {
	return c.frames.Load()
}

// SampleRate returns the clock's sample rate in Hz.
func (c *SampleClock) SampleRate() int {
	return c.sampleRate
}

// Now returns rendered time in seconds.
func (c *SampleClock) Now() float64 {
	return float64(c.frames.Load()) / float64(c.sampleRate)
}

// Manual is a clock whose time is set explicitly. Used by tests and tools.
type Manual struct {
	now float64
}

// NewManual creates a manual clock at t seconds.
func NewManual(t float64) *Manual {
	return &Manual{now: t}
}

// Now returns the current time.
func (m *Manual) Now() float64 {
	return m.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (m *Manual) Set(t float64) {
	if t > m.now {
		m.now = t
	}
}

// Add advances the clock by d seconds.
func (m *Manual) Add(d float64) {
	m.Set(m.now + d)
}
