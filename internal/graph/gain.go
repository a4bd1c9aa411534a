package graph

// Gain scales a signal by its gain parameter.
type Gain struct {
	gain *Param
}

// NewGain creates a gain node with the given initial value.
func NewGain(value float64) *Gain {
	return &Gain{gain: NewParam("gain", value, 0, 10)}
}

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param { return g.gain }

// Param implements Node.
func (g *Gain) Param(name string) *Param {
	if name == "gain" {
		return g.gain
	}
	return nil
}

// Process scales the first n frames of buf in place.
func (g *Gain) Process(buf [][]float64, n int) {
	v := g.gain.Value()
	if v == 1 {
		return
	}
	for _, ch := range buf {
		for i := 0; i < n; i++ {
			ch[i] *= v
		}
	}
}

// MixInto adds src scaled by the gain to dst.
func (g *Gain) MixInto(dst, src [][]float64, n int) {
	v := g.gain.Value()
	if v == 0 {
		return
	}
	for ch := range dst {
		s := src[ch%len(src)]
		d := dst[ch]
		for i := 0; i < n; i++ {
			d[i] += s[i] * v
		}
	}
}
