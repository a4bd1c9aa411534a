package graph

import (
	"math"
	"math/cmplx"
)

// FilterType selects the biquad response.
type FilterType int

const (
	LowShelf FilterType = iota
	Peaking
	HighShelf
)

func (t FilterType) String() string {
	switch t {
	case LowShelf:
		return "lowshelf"
	case Peaking:
		return "peaking"
	case HighShelf:
		return "highshelf"
	}
	return "unknown"
}

// Biquad is a second order IIR filter using the audio EQ cookbook
// coefficients. Shelving types ignore Q and use a shelf slope of 1.
type Biquad struct {
	kind       FilterType
	sampleRate float64

	frequency *Param
	q         *Param
	gain      *Param // dB

	b0, b1, b2, a1, a2 float64
	seen               [3]uint64
	dirty              bool

	// Direct form I history per channel: x1, x2, y1, y2
	state [][4]float64
}

// NewBiquad creates a filter at frequency Hz with the given Q and 0 dB gain.
func NewBiquad(kind FilterType, sampleRate int, frequency, q float64) *Biquad {
	nyquist := float64(sampleRate) / 2
	f := &Biquad{
		kind:       kind,
		sampleRate: float64(sampleRate),
		frequency:  NewParam("frequency", frequency, 10, nyquist),
		q:          NewParam("Q", q, 0.0001, 1000),
		gain:       NewParam("gain", 0, -40, 40),
		dirty:      true,
	}
	f.updateCoefficients()
	return f
}

// Type returns the filter type.
func (f *Biquad) Type() FilterType { return f.kind }

// Frequency returns the centre or corner frequency parameter.
func (f *Biquad) Frequency() *Param { return f.frequency }

// Q returns the quality factor parameter.
func (f *Biquad) Q() *Param { return f.q }

// Gain returns the gain parameter in dB.
func (f *Biquad) Gain() *Param { return f.gain }

// Param implements Node.
func (f *Biquad) Param(name string) *Param {
	switch name {
	case "frequency":
		return f.frequency
	case "Q", "q":
		return f.q
	case "gain":
		return f.gain
	}
	return nil
}

func (f *Biquad) updateCoefficients() {
	versions := [3]uint64{f.frequency.Version(), f.q.Version(), f.gain.Version()}
	if !f.dirty && versions == f.seen {
		return
	}
	f.seen = versions
	f.dirty = false

	A := math.Pow(10, f.gain.Value()/40)
	w0 := 2 * math.Pi * f.frequency.Value() / f.sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.kind {
	case Peaking:
		alpha := sinw / (2 * f.q.Value())
		b0 = 1 + alpha*A
		b1 = -2 * cosw
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cosw
		a2 = 1 - alpha/A
	case LowShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(A) * alpha
		b0 = A * ((A + 1) - (A-1)*cosw + sq)
		b1 = 2 * A * ((A - 1) - (A+1)*cosw)
		b2 = A * ((A + 1) - (A-1)*cosw - sq)
		a0 = (A + 1) + (A-1)*cosw + sq
		a1 = -2 * ((A - 1) + (A+1)*cosw)
		a2 = (A + 1) + (A-1)*cosw - sq
	case HighShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(A) * alpha
		b0 = A * ((A + 1) + (A-1)*cosw + sq)
		b1 = -2 * A * ((A - 1) + (A+1)*cosw)
		b2 = A * ((A + 1) + (A-1)*cosw - sq)
		a0 = (A + 1) - (A-1)*cosw + sq
		a1 = 2 * ((A - 1) - (A+1)*cosw)
		a2 = (A + 1) - (A-1)*cosw - sq
	}

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// Process filters the first n frames of buf in place.
func (f *Biquad) Process(buf [][]float64, n int) {
	f.updateCoefficients()
	for len(f.state) < len(buf) {
		f.state = append(f.state, [4]float64{})
	}

	for ch, samples := range buf {
		s := &f.state[ch]
		x1, x2, y1, y2 := s[0], s[1], s[2], s[3]
		for i := 0; i < n; i++ {
			x := samples[i]
			y := f.b0*x + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
			x2, x1 = x1, x
			y2, y1 = y1, y
			samples[i] = y
		}
		s[0], s[1], s[2], s[3] = x1, x2, y1, y2
	}
}

// MagnitudeResponse returns the linear gain of the filter at freq Hz.
func (f *Biquad) MagnitudeResponse(freq float64) float64 {
	f.updateCoefficients()
	w := 2 * math.Pi * freq / f.sampleRate
	z1 := complex(math.Cos(w), -math.Sin(w))
	z2 := z1 * z1
	num := complex(f.b0, 0) + complex(f.b1, 0)*z1 + complex(f.b2, 0)*z2
	den := complex(1, 0) + complex(f.a1, 0)*z1 + complex(f.a2, 0)*z2
	return cmplx.Abs(num / den)
}
