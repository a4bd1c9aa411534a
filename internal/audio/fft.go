package audio

import (
	"math"
	"math/cmplx"

	"github.com/argusdusty/gofft"
)

// ApplyHanning applies a Hanning window to the input data
func ApplyHanning(data []float64) []float64 {
	windowed := make([]float64, len(data))
	n := len(data)
	for i := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = data[i] * window
	}
	return windowed
}

// Processor computes windowed magnitude spectra of a fixed size.
type Processor struct {
	size int
	buf  []complex128
}

// NewProcessor creates a processor for power-of-two blocks of size samples.
func NewProcessor(size int) *Processor {
	gofft.Prepare(size)
	return &Processor{
		size: size,
		buf:  make([]complex128, size),
	}
}

// Size returns the FFT size.
func (p *Processor) Size() int {
	return p.size
}

// Magnitudes returns |X[k]|/N for the first N/2 bins of the Hanning windowed input.
// Short input is zero padded.
func (p *Processor) Magnitudes(samples []float64) ([]float64, error) {
	chunk := samples
	if len(chunk) < p.size {
		padded := make([]float64, p.size)
		copy(padded, chunk)
		chunk = padded
	}

	windowed := ApplyHanning(chunk[:p.size])
	for i, v := range windowed {
		p.buf[i] = complex(v, 0)
	}
	if err := gofft.FFT(p.buf); err != nil {
		return nil, err
	}

	half := p.size / 2
	mags := make([]float64, half)
	for k := 0; k < half; k++ {
		mags[k] = cmplx.Abs(p.buf[k]) / float64(p.size)
	}
	return mags, nil
}

// BinBars averages byte frequency data into numBars bars over the lower
// half of the spectrum, normalized to 0.0-1.0.
func BinBars(data []uint8, numBars int) []float64 {
	bars := make([]float64, numBars)
	usable := len(data) / 2
	if usable == 0 || numBars == 0 {
		return bars
	}

	binsPerBar := usable / numBars
	if binsPerBar == 0 {
		binsPerBar = 1
	}

	for bar := 0; bar < numBars; bar++ {
		start := bar * binsPerBar
		if start >= usable {
			break
		}
		end := start + binsPerBar
		if end > usable {
			end = usable
		}

		var sum float64
		for i := start; i < end; i++ {
			sum += float64(data[i])
		}
		bars[bar] = sum / float64(end-start) / 255.0
	}
	return bars
}
