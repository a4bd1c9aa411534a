package graph

import (
	"math"

	"github.com/linuxmatters/jivedeck/internal/audio"
)

// Analyser is a pass-through tap that keeps the most recent mono-mixed
// samples and reports smoothed frequency magnitudes on demand.
type Analyser struct {
	proc      *audio.Processor
	ring      []float64
	pos       int
	smoothing float64
	minDB     float64
	maxDB     float64
	smoothed  []float64
}

// NewAnalyser creates an analyser with a power-of-two FFT size.
func NewAnalyser(size int, smoothing, minDB, maxDB float64) *Analyser {
	return &Analyser{
		proc:      audio.NewProcessor(size),
		ring:      make([]float64, size),
		smoothing: smoothing,
		minDB:     minDB,
		maxDB:     maxDB,
		smoothed:  make([]float64, size/2),
	}
}

// FrequencyBinCount returns the number of bins in the frequency data.
func (a *Analyser) FrequencyBinCount() int { return len(a.smoothed) }

// Process records the first n frames of buf without modifying it.
func (a *Analyser) Process(buf [][]float64, n int) {
	scale := 1 / float64(len(buf))
	for i := 0; i < n; i++ {
		var sum float64
		for _, ch := range buf {
			sum += ch[i]
		}
		a.ring[a.pos] = sum * scale
		a.pos = (a.pos + 1) % len(a.ring)
	}
}

// TimeDomainData returns the buffered samples, oldest first.
func (a *Analyser) TimeDomainData() []float64 {
	out := make([]float64, len(a.ring))
	copy(out, a.ring[a.pos:])
	copy(out[len(a.ring)-a.pos:], a.ring[:a.pos])
	return out
}

// ByteFrequencyData applies time smoothing to the current spectrum and maps
// it from [minDB, maxDB] onto 0-255.
func (a *Analyser) ByteFrequencyData() []uint8 {
	out := make([]uint8, len(a.smoothed))

	mags, err := a.proc.Magnitudes(a.TimeDomainData())
	if err != nil {
		return out
	}

	span := a.maxDB - a.minDB
	for k, m := range mags {
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*m

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := 255 * (db - a.minDB) / span
		out[k] = uint8(math.Max(0, math.Min(255, v)))
	}
	return out
}
