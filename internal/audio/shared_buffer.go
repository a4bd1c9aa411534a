package audio

import (
	"errors"
	"sync"
)

// ErrBufferClosed is returned when attempting to read from a closed buffer
var ErrBufferClosed = errors.New("buffer is closed")

// Consumer identifies one reader of a SharedAudioBuffer.
type Consumer int

const (
	ConsumerStream   Consumer = iota // WebRTC monitor encoder
	ConsumerRecorder                 // mix recorder
	numConsumers
)

// SharedAudioBuffer shares rendered master output between the monitor
// stream and the mix recorder. Each consumer has an independent read
// position, allowing them to consume data at different rates.
//
// Design:
// - Single producer (engine render) writes interleaved samples via Write()
// - Consumers must Attach before their position counts towards compaction
// - Detached consumers never hold data back
// - EOF signalling via Close() propagates to every consumer
type SharedAudioBuffer struct {
	mu sync.Mutex

	samples []float64

	readPos  [numConsumers]int
	attached [numConsumers]bool

	closed bool
	cond   *sync.Cond
}

// NewSharedAudioBuffer creates a new shared audio buffer.
// initialCapacity is a hint for the expected live samples (can grow as needed).
func NewSharedAudioBuffer(initialCapacity int) *SharedAudioBuffer {
	if initialCapacity <= 0 {
		initialCapacity = 48000 * 2 // one second of stereo at the engine rate
	}

	b := &SharedAudioBuffer{
		samples: make([]float64, 0, initialCapacity),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Attach starts tracking a consumer from the current end of the buffer.
func (b *SharedAudioBuffer) Attach(c Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached[c] = true
	b.readPos[c] = len(b.samples)
}

// Detach stops tracking a consumer so it no longer holds back compaction.
func (b *SharedAudioBuffer) Detach(c Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached[c] = false
	b.cond.Broadcast()
}

// Attached reports whether any consumer is attached.
func (b *SharedAudioBuffer) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.attached {
		if a {
			return true
		}
	}
	return false
}

// Write appends samples to the buffer and compacts consumed data.
// Without attached consumers the samples are dropped.
func (b *SharedAudioBuffer) Write(samples []float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}

	b.samples = append(b.samples, samples...)
	b.compactLocked()
	b.cond.Broadcast() // Wake up any waiting consumers
	return nil
}

// Read returns exactly numSamples for consumer c.
// Blocks until enough samples are available or the buffer is closed.
func (b *SharedAudioBuffer) Read(c Consumer, numSamples int) ([]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if !b.attached[c] {
			return nil, ErrBufferClosed
		}

		available := len(b.samples) - b.readPos[c]
		if available >= numSamples {
			return b.takeLocked(c, numSamples), nil
		}

		if b.closed {
			if available <= 0 {
				return nil, ErrBufferClosed
			}
			return b.takeLocked(c, available), nil
		}

		b.cond.Wait()
	}
}

// ReadNonBlocking returns up to numSamples for consumer c without waiting.
// Returns nil when nothing is available yet.
func (b *SharedAudioBuffer) ReadNonBlocking(c Consumer, numSamples int) ([]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	available := len(b.samples) - b.readPos[c]
	if available <= 0 || !b.attached[c] {
		if b.closed {
			return nil, ErrBufferClosed
		}
		return nil, nil
	}

	if numSamples > available {
		numSamples = available
	}
	return b.takeLocked(c, numSamples), nil
}

func (b *SharedAudioBuffer) takeLocked(c Consumer, n int) []float64 {
	pos := b.readPos[c]
	result := make([]float64, n)
	copy(result, b.samples[pos:pos+n])
	b.readPos[c] += n
	return result
}

// Available returns the number of unread samples for consumer c.
func (b *SharedAudioBuffer) Available(c Consumer) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples) - b.readPos[c]
}

// Len returns the number of samples currently held.
func (b *SharedAudioBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Close signals that no more samples will be written.
// Wakes up any blocked consumers.
func (b *SharedAudioBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// IsClosed returns whether the buffer has been closed.
func (b *SharedAudioBuffer) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// compactLocked removes samples consumed by every attached consumer.
func (b *SharedAudioBuffer) compactLocked() {
	minPos := len(b.samples)
	for c := Consumer(0); c < numConsumers; c++ {
		if b.attached[c] && b.readPos[c] < minPos {
			minPos = b.readPos[c]
		}
	}

	if minPos == 0 {
		return
	}

	remaining := len(b.samples) - minPos
	copy(b.samples, b.samples[minPos:])
	b.samples = b.samples[:remaining]
	for c := range b.readPos {
		b.readPos[c] -= minPos
		if b.readPos[c] < 0 {
			b.readPos[c] = 0
		}
	}
}
