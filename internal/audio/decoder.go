package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// AudioDecoder defines the interface for all audio format decoders
type AudioDecoder interface {
	// ReadChunk reads up to numFrames frames as planar float64 channels.
	// Returns io.EOF when the stream is exhausted.
	ReadChunk(numFrames int) ([][]float64, error)

	// SampleRate returns the audio sample rate in Hz
	SampleRate() int

	// NumSamples returns the total number of frames in the audio file
	// Returns 0 if the length is unknown
	NumSamples() int64

	// NumChannels returns the number of audio channels (1=mono, 2=stereo)
	NumChannels() int

	// Close closes the decoder and releases resources
	Close() error
}

// NewDecoder picks a decoder from the file extension.
func NewDecoder(filename string) (AudioDecoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// decodeAll drains a decoder into planar channel slices.
func decodeAll(d AudioDecoder) ([][]float64, error) {
	const chunkFrames = 16384

	channels := make([][]float64, d.NumChannels())
	if n := d.NumSamples(); n > 0 {
		for ch := range channels {
			channels[ch] = make([]float64, 0, n)
		}
	}

	for {
		chunk, err := d.ReadChunk(chunkFrames)
		for ch := range channels {
			if ch < len(chunk) {
				channels[ch] = append(channels[ch], chunk[ch]...)
			}
		}
		if err == io.EOF {
			return channels, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
