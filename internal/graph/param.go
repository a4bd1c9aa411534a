// Package graph implements the per-deck signal chain: buffer playback,
// three-band EQ, delay and reverb sends, and the shared master bus.
//
// Nodes are not safe for concurrent use. The engine serializes rendering
// and parameter writes behind its own lock.
package graph

import "math"

// Param is a live-updatable node parameter.
type Param struct {
	name     string
	value    float64
	min, max float64
	version  uint64
}

// NewParam creates a parameter clamped to [min, max].
func NewParam(name string, value, min, max float64) *Param {
	p := &Param{name: name, min: min, max: max}
	p.value = p.clamp(value)
	return p
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Value returns the current value.
func (p *Param) Value() float64 { return p.value }

// Set changes the value immediately. NaN is ignored.
func (p *Param) Set(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = p.clamp(v)
	if v != p.value {
		p.value = v
		p.version++
	}
}

// Version increments on every effective change.
func (p *Param) Version() uint64 { return p.version }

func (p *Param) clamp(v float64) float64 {
	return math.Max(p.min, math.Min(p.max, v))
}

// Node is anything exposing named parameters.
type Node interface {
	Param(name string) *Param
}

// newBuffer allocates planar channels of n frames.
func newBuffer(channels, n int) [][]float64 {
	buf := make([][]float64, channels)
	for ch := range buf {
		buf[ch] = make([]float64, n)
	}
	return buf
}

// zero zeroes the first n frames of buf.
func zero(buf [][]float64, n int) {
	for _, ch := range buf {
		for i := 0; i < n && i < len(ch); i++ {
			ch[i] = 0
		}
	}
}
