// Package output drives the engine in real time, either into the system
// speaker through oto or into a ticker-paced null sink.
package output

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/linuxmatters/jivedeck/internal/config"
)

// Renderer fills interleaved stereo samples.
type Renderer interface {
	Render(out []float64)
}

// Sink pulls audio from a Renderer until closed.
type Sink interface {
	Start()
	Close() error
}

// pcmReader adapts a Renderer to the io.Reader oto pulls from, encoding
// float32 little endian frames.
type pcmReader struct {
	r   Renderer
	buf []float64
}

func (p *pcmReader) Read(b []byte) (int, error) {
	const frameBytes = 4 * config.Channels
	frames := len(b) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	n := frames * config.Channels
	if cap(p.buf) < n {
		p.buf = make([]float64, n)
	}
	samples := p.buf[:n]
	p.r.Render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(s)))
	}
	return frames * frameBytes, nil
}

// NullSink renders block by block on a ticker so the engine clock follows
// wall time without an audio device.
type NullSink struct {
	r        Renderer
	interval time.Duration
	frames   int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewNullSink creates a sink that renders config.BlockFrames per tick.
func NewNullSink(r Renderer, sampleRate int) *NullSink {
	return &NullSink{
		r:        r,
		frames:   config.BlockFrames,
		interval: time.Duration(float64(config.BlockFrames) / float64(sampleRate) * float64(time.Second)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins rendering in a background goroutine.
func (s *NullSink) Start() {
	go s.run()
}

func (s *NullSink) run() {
	defer close(s.done)

	block := make([]float64, s.frames*config.Channels)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.r.Render(block)
		}
	}
}

// Close stops rendering and waits for the goroutine to exit.
func (s *NullSink) Close() error {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}
