package graph

import "math"

// Delay is a delay line with a feedback path from its output back to its
// input. The feedback gain is fixed at construction.
type Delay struct {
	sampleRate float64
	delayTime  *Param // seconds
	feedback   *Gain

	lines [][]float64
	write int
}

// NewDelay creates a delay with room for maxSeconds of signal.
func NewDelay(sampleRate int, maxSeconds, feedback float64, channels int) *Delay {
	size := int(math.Ceil(maxSeconds*float64(sampleRate))) + 1
	return &Delay{
		sampleRate: float64(sampleRate),
		delayTime:  NewParam("delayTime", 0, 0, maxSeconds),
		feedback:   NewGain(feedback),
		lines:      newBuffer(channels, size),
	}
}

// DelayTime returns the delay time parameter in seconds.
func (d *Delay) DelayTime() *Param { return d.delayTime }

// Feedback returns the feedback gain node.
func (d *Delay) Feedback() *Gain { return d.feedback }

// Param implements Node.
func (d *Delay) Param(name string) *Param {
	switch name {
	case "delayTime":
		return d.delayTime
	case "feedback":
		return d.feedback.Gain()
	}
	return nil
}

// Process reads n frames from in and writes the delayed signal to out.
// A delay of zero is treated as one frame so the feedback loop stays causal.
func (d *Delay) Process(in, out [][]float64, n int) {
	size := len(d.lines[0])
	delay := int(math.Round(d.delayTime.Value() * d.sampleRate))
	if delay < 1 {
		delay = 1
	}
	if delay > size-1 {
		delay = size - 1
	}
	fb := d.feedback.Gain().Value()

	start := d.write
	for ch, line := range d.lines {
		src := in[ch%len(in)]
		dst := out[ch]
		w := start
		for i := 0; i < n; i++ {
			r := w - delay
			if r < 0 {
				r += size
			}
			y := line[r]
			line[w] = src[i] + fb*y
			dst[i] = y
			w++
			if w == size {
				w = 0
			}
		}
		d.write = w
	}
}
