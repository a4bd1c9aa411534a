package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder implements AudioDecoder for MP3 files
type MP3Decoder struct {
	decoder     *mp3.Decoder
	file        *os.File
	sampleRate  int
	numChannels int
	numSamples  int64
}

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	var total int64
	if length := decoder.Length(); length > 0 {
		total = length / 4
	}

	return &MP3Decoder{
		decoder:     decoder,
		file:        f,
		sampleRate:  decoder.SampleRate(),
		numChannels: 2, // go-mp3 always outputs stereo
		numSamples:  total,
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *MP3Decoder) ReadChunk(numFrames int) ([][]float64, error) {
	// go-mp3 outputs interleaved 16-bit LE stereo: 4 bytes per frame
	buf := make([]byte, numFrames*4)

	n, err := io.ReadFull(d.decoder, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	frames := n / 4
	if frames == 0 {
		return nil, io.EOF
	}

	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left[i] = float64(int16(buf[i*4])|int16(buf[i*4+1])<<8) / 32768.0
		right[i] = float64(int16(buf[i*4+2])|int16(buf[i*4+3])<<8) / 32768.0
	}

	return [][]float64{left, right}, nil
}

// SampleRate returns the sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumSamples returns the total number of frames
func (d *MP3Decoder) NumSamples() int64 {
	return d.numSamples
}

// NumChannels returns the number of audio channels
func (d *MP3Decoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
