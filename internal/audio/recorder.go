package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes interleaved float samples to a 16-bit PCM WAV file.
type Recorder struct {
	file     *os.File
	encoder  *wav.Encoder
	format   *audio.Format
	channels int
	frames   int64
}

// NewRecorder creates the output file and prepares the WAV encoder.
func NewRecorder(filename string, sampleRate, channels int) (*Recorder, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}

	return &Recorder{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, 16, channels, 1),
		format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		channels: channels,
	}, nil
}

// Write encodes interleaved samples, clipping to [-1, 1].
func (r *Recorder) Write(samples []float64) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * 32767))
	}

	buf := &audio.IntBuffer{Data: data, Format: r.format, SourceBitDepth: 16}
	if err := r.encoder.Write(buf); err != nil {
		return fmt.Errorf("writing recording: %w", err)
	}
	r.frames += int64(len(samples) / r.channels)
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int64 {
	return r.frames
}

// Drain reads the recorder consumer of buf until it is closed or detached.
func (r *Recorder) Drain(buf *SharedAudioBuffer, chunk int) error {
	for {
		samples, err := buf.Read(ConsumerRecorder, chunk)
		if len(samples) > 0 {
			if werr := r.Write(samples); werr != nil {
				return werr
			}
		}
		if errors.Is(err, ErrBufferClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	encErr := r.encoder.Close()
	fileErr := r.file.Close()
	if encErr != nil {
		return fmt.Errorf("finalizing recording: %w", encErr)
	}
	return fileErr
}
