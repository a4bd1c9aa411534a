package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements AudioDecoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numSamples  int64
	numChannels int
	bitDepth    int

	// Samples decoded from the last frame but not yet returned
	pending [][]float64
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(stream.Info.SampleRate),
		numSamples:  int64(stream.Info.NSamples),
		numChannels: int(stream.Info.NChannels),
		bitDepth:    int(stream.Info.BitsPerSample),
		pending:     make([][]float64, int(stream.Info.NChannels)),
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *FLACDecoder) ReadChunk(numFrames int) ([][]float64, error) {
	for len(d.pending[0]) < numFrames {
		frame, err := d.stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Normalize to [-1.0, 1.0]; FLAC supports 4-32 bits per sample
		bits := int(frame.BitsPerSample)
		if bits == 0 {
			bits = d.bitDepth
		}
		maxVal := float64(int64(1) << (bits - 1))

		for ch := 0; ch < d.numChannels && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				d.pending[ch] = append(d.pending[ch], float64(s)/maxVal)
			}
		}
	}

	n := len(d.pending[0])
	if n == 0 {
		return nil, io.EOF
	}
	if n > numFrames {
		n = numFrames
	}

	out := make([][]float64, d.numChannels)
	for ch := range out {
		out[ch] = append([]float64(nil), d.pending[ch][:n]...)
		d.pending[ch] = d.pending[ch][n:]
	}
	return out, nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumSamples returns the total number of frames
func (d *FLACDecoder) NumSamples() int64 {
	return d.numSamples
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
