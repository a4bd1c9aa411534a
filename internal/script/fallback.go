package script

import (
	"strings"

	"github.com/linuxmatters/jivedeck/internal/graph"
)

// Kind is the slider group a formula is bound to.
type Kind string

const (
	Volume  Kind = "volume"
	EQ      Kind = "eq"
	Effects Kind = "effects"
)

// Default formulas seeded into the built-in preset.
const (
	DefaultVolumeCode  = `value * 0.01`
	DefaultEQCode      = `let f = setFrequency(sliderId contains "high" ? 8000.0 : sliderId contains "mid" ? 1000.0 : 200.0); setGain((value - 50) * 0.3)`
	DefaultEffectsCode = `sliderId contains "reverb" ? value * 0.02 : value * 0.01`
)

// FallbackVolume is the gain applied when a volume formula fails.
func FallbackVolume(value float64) float64 {
	return value / 100
}

// FallbackEQ applies the built-in EQ formula to node: a band frequency
// chosen from the slider id and a gain of (value-50)*0.3 dB. It returns
// the gain written.
func FallbackEQ(sliderID string, value float64, node graph.Node) float64 {
	freq := 200.0
	switch {
	case strings.Contains(sliderID, "high"):
		freq = 8000
	case strings.Contains(sliderID, "mid"):
		freq = 1000
	}
	gain := (value - 50) * 0.3
	if node != nil {
		if p := node.Param("frequency"); p != nil {
			p.Set(freq)
		}
		if p := node.Param("gain"); p != nil {
			p.Set(gain)
		}
	}
	return gain
}

// FallbackEffect is the wet level applied when an effects formula fails.
func FallbackEffect(sliderID string, value float64) float64 {
	if strings.Contains(sliderID, "reverb") {
		return value * 0.02
	}
	return value / 100
}
