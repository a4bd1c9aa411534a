package graph

import (
	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
)

// DeckGraph is the fixed signal chain of one deck:
//
//	source → low shelf → mid peak → high shelf ─┬─ delay → delayWet ─┐
//	                                            ├─ delayDry ─────────┤
//	                                            ├─ reverb → reverbWet┤
//	                                            └─ reverbDry ────────┴─ mixer → deck gain
//
// Both dry paths are summed, so an untouched deck runs at twice unity gain
// before the deck gain stage.
type DeckGraph struct {
	ID string

	Low  *Biquad
	Mid  *Biquad
	High *Biquad

	Delay    *Delay
	DelayWet *Gain
	DelayDry *Gain

	Reverb    *Convolver
	ReverbWet *Gain
	ReverbDry *Gain

	Output *Gain

	engineRate int
	source     *BufferSource

	input     [][]float64
	delayOut  [][]float64
	reverbOut [][]float64
	mix       [][]float64
}

func newDeckGraph(id string, sampleRate int, ir [][]float64) (*DeckGraph, error) {
	reverb, err := NewConvolver(ir)
	if err != nil {
		return nil, err
	}

	mid := NewBiquad(Peaking, sampleRate, config.MidPeakFrequency, config.MidPeakQ)
	return &DeckGraph{
		ID:         id,
		Low:        NewBiquad(LowShelf, sampleRate, config.LowShelfFrequency, 1),
		Mid:        mid,
		High:       NewBiquad(HighShelf, sampleRate, config.HighShelfFrequency, 1),
		Delay:      NewDelay(sampleRate, config.MaxDelaySeconds, config.DelayFeedback, config.Channels),
		DelayWet:   NewGain(0),
		DelayDry:   NewGain(1),
		Reverb:     reverb,
		ReverbWet:  NewGain(0),
		ReverbDry:  NewGain(1),
		Output:     NewGain(1),
		engineRate: sampleRate,
	}, nil
}

// Start connects a new buffer source playing track from offset at rate.
// Any previous source is stopped and disconnected first.
func (d *DeckGraph) Start(track *audio.Track, offset, rate float64) *BufferSource {
	d.Stop()
	src := NewBufferSource(track, d.engineRate)
	src.SetRate(rate)
	src.Start(offset)
	d.source = src
	return src
}

// Stop stops and disconnects the current source, if any.
func (d *DeckGraph) Stop() {
	if d.source != nil {
		d.source.Stop()
		d.source = nil
	}
}

// Source returns the connected source or nil.
func (d *DeckGraph) Source() *BufferSource { return d.source }

// EQ returns the filter for band "high", "mid" or "low".
func (d *DeckGraph) EQ(band string) *Biquad {
	switch band {
	case "high":
		return d.High
	case "mid":
		return d.Mid
	case "low":
		return d.Low
	}
	return nil
}

// SetDelay applies the delay send mapping for v in [0, 1].
func (d *DeckGraph) SetDelay(v float64) {
	d.Delay.DelayTime().Set(v * config.DelayTimeScale)
	d.DelayWet.Gain().Set(v)
	d.DelayDry.Gain().Set(1 - v/2)
}

// SetReverb applies the reverb send mapping for v in [0, 1].
func (d *DeckGraph) SetReverb(v float64) {
	d.ReverbWet.Gain().Set(v)
	d.ReverbDry.Gain().Set(1 - v)
}

// BypassDelay resets the delay send to fully dry.
func (d *DeckGraph) BypassDelay() {
	d.DelayWet.Gain().Set(0)
	d.DelayDry.Gain().Set(1)
}

// BypassReverb resets the reverb send to fully dry.
func (d *DeckGraph) BypassReverb() {
	d.ReverbWet.Gain().Set(0)
	d.ReverbDry.Gain().Set(1)
}

func (d *DeckGraph) ensure(n int) {
	if len(d.input) > 0 && len(d.input[0]) >= n {
		return
	}
	d.input = newBuffer(config.Channels, n)
	d.delayOut = newBuffer(config.Channels, n)
	d.reverbOut = newBuffer(config.Channels, n)
	d.mix = newBuffer(config.Channels, n)
}

// RenderInto processes n frames and adds the deck output to dst.
// Effects keep ringing out after the source stops.
func (d *DeckGraph) RenderInto(dst [][]float64, n int) {
	d.ensure(n)

	if d.source != nil {
		d.source.Render(d.input, n)
	} else {
		zero(d.input, n)
	}

	d.Low.Process(d.input, n)
	d.Mid.Process(d.input, n)
	d.High.Process(d.input, n)

	d.Delay.Process(d.input, d.delayOut, n)
	d.Reverb.Process(d.input, d.reverbOut, n)

	zero(d.mix, n)
	d.DelayWet.MixInto(d.mix, d.delayOut, n)
	d.DelayDry.MixInto(d.mix, d.input, n)
	d.ReverbWet.MixInto(d.mix, d.reverbOut, n)
	d.ReverbDry.MixInto(d.mix, d.input, n)

	d.Output.MixInto(dst, d.mix, n)
}
