package graph

import (
	"fmt"

	"github.com/argusdusty/gofft"
)

// convolverPartition is the FFT partition length in frames. Output lags
// input by one partition.
const convolverPartition = 1024

// Convolver applies an impulse response with uniformly partitioned
// overlap-add FFT convolution. Channel i of the input is convolved with
// channel i of the impulse response.
type Convolver struct {
	partition int
	channels  []*partitionedChannel
	pos       int
}

type partitionedChannel struct {
	irSpectra [][]complex128 // one spectrum per impulse partition
	history   [][]complex128 // input spectra ring, newest at head
	head      int

	input   []float64
	output  []float64
	overlap []float64

	scratch []complex128
	acc     []complex128
}

// NewConvolver prepares the impulse response spectra.
func NewConvolver(ir [][]float64) (*Convolver, error) {
	if len(ir) == 0 || len(ir[0]) == 0 {
		return nil, fmt.Errorf("empty impulse response")
	}

	p := convolverPartition
	if err := gofft.Prepare(2 * p); err != nil {
		return nil, fmt.Errorf("preparing FFT: %w", err)
	}

	c := &Convolver{partition: p}
	for _, channel := range ir {
		pc, err := newPartitionedChannel(channel, p)
		if err != nil {
			return nil, err
		}
		c.channels = append(c.channels, pc)
	}
	return c, nil
}

func newPartitionedChannel(ir []float64, p int) (*partitionedChannel, error) {
	parts := (len(ir) + p - 1) / p
	pc := &partitionedChannel{
		irSpectra: make([][]complex128, parts),
		history:   make([][]complex128, parts),
		input:     make([]float64, p),
		output:    make([]float64, p),
		overlap:   make([]float64, p),
		scratch:   make([]complex128, 2*p),
		acc:       make([]complex128, 2*p),
	}

	for j := 0; j < parts; j++ {
		spec := make([]complex128, 2*p)
		for i := 0; i < p && j*p+i < len(ir); i++ {
			spec[i] = complex(ir[j*p+i], 0)
		}
		if err := gofft.FFT(spec); err != nil {
			return nil, fmt.Errorf("transforming impulse partition: %w", err)
		}
		pc.irSpectra[j] = spec
		pc.history[j] = make([]complex128, 2*p)
	}
	return pc, nil
}

// Latency returns the delay in frames between input and output.
func (c *Convolver) Latency() int { return c.partition }

// Process convolves n frames from in and writes the result to out.
func (c *Convolver) Process(in, out [][]float64, n int) {
	for i := 0; i < n; i++ {
		for ch, pc := range c.channels {
			pc.input[c.pos] = in[ch%len(in)][i]
			if ch < len(out) {
				out[ch][i] = pc.output[c.pos]
			}
		}

		c.pos++
		if c.pos == c.partition {
			c.pos = 0
			for _, pc := range c.channels {
				pc.processPartition()
			}
		}
	}
}

func (pc *partitionedChannel) processPartition() {
	p := len(pc.input)
	parts := len(pc.irSpectra)

	// Newest input block spectrum goes to the head of the history ring
	pc.head = (pc.head + parts - 1) % parts
	spec := pc.history[pc.head]
	for i := 0; i < p; i++ {
		spec[i] = complex(pc.input[i], 0)
		spec[p+i] = 0
	}
	// 2*partition was validated by gofft.Prepare in NewConvolver
	_ = gofft.FFT(spec)

	for i := range pc.acc {
		pc.acc[i] = 0
	}
	for j := 0; j < parts; j++ {
		x := pc.history[(pc.head+j)%parts]
		h := pc.irSpectra[j]
		for k := range pc.acc {
			pc.acc[k] += x[k] * h[k]
		}
	}

	copy(pc.scratch, pc.acc)
	_ = gofft.IFFT(pc.scratch)

	for i := 0; i < p; i++ {
		pc.output[i] = real(pc.scratch[i]) + pc.overlap[i]
		pc.overlap[i] = real(pc.scratch[p+i])
	}
}
