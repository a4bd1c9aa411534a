package graph

import (
	"math"
	"math/rand/v2"
)

// GenerateImpulse synthesizes a decaying noise impulse response: each
// sample is uniform noise in [-1, 1] scaled by (1 - i/length)^decay.
func GenerateImpulse(rng *rand.Rand, sampleRate int, seconds, decay float64, channels int) [][]float64 {
	length := int(float64(sampleRate) * seconds)
	ir := newBuffer(channels, length)
	for _, ch := range ir {
		for i := range ch {
			envelope := math.Pow(1-float64(i)/float64(length), decay)
			ch[i] = (rng.Float64()*2 - 1) * envelope
		}
	}
	return ir
}
