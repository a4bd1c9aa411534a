package engine

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/linuxmatters/jivedeck/internal/clock"
	"github.com/linuxmatters/jivedeck/internal/graph"
	"github.com/linuxmatters/jivedeck/internal/mixer"
	"github.com/linuxmatters/jivedeck/internal/preset"
	"github.com/linuxmatters/jivedeck/internal/script"
)

// ErrUnknownBand is returned for EQ bands other than high, mid and low.
var ErrUnknownBand = errors.New("unknown EQ band")

// SetCrossfader moves the crossfader in [0, 100].
func (e *Engine) SetCrossfader(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mixer.SetCrossfader(x)
}

// SetMaster sets the master level in [0, 100].
func (e *Engine) SetMaster(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mixer.SetMaster(v)
}

// SetVolume sets a deck's volume slider in [0, 100]. A bound volume formula
// replaces the standard crossfaded gain.
func (e *Engine) SetVolume(id string, v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.deck(id); err != nil {
		return err
	}
	e.mixer.SetVolume(id, v)

	t, ok := e.bindings[bindingKey{id, script.Volume}]
	if !ok {
		return nil
	}
	dg := e.graph.Deck(id)
	sliderID := "volume-" + id
	res, got, err := t.Transform(v, id, sliderID, e.clock, dg.Output)
	gain := res
	switch {
	case err != nil:
		log.Printf("custom volume %s failed, using default: %v", sliderID, err)
		gain = script.FallbackVolume(v)
	case !got || res == 0:
		gain = v / 100
	}
	dg.Output.Gain().Set(gain)
	return nil
}

// SetEQ sets one EQ band slider in [0, 100].
func (e *Engine) SetEQ(id, band string, v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.deck(id); err != nil {
		return err
	}
	filter := e.graph.Deck(id).EQ(band)
	if filter == nil {
		return fmt.Errorf("%w: %q", ErrUnknownBand, band)
	}
	v = clampSlider(v)
	e.eq[id][band] = v

	t, ok := e.bindings[bindingKey{id, script.EQ}]
	if !ok {
		filter.Gain().Set(mixer.EQGain(v))
		return nil
	}

	sliderID := "eq-" + band + "-" + id
	res, got, err := t.Transform(v, id, sliderID, e.clock, filter)
	switch {
	case err != nil:
		log.Printf("custom eq %s failed, using default: %v", sliderID, err)
		script.FallbackEQ(sliderID, v, filter)
	case got:
		filter.Gain().Set(res)
	}
	return nil
}

// SetReverb sets the reverb send slider in [0, 100] on every deck. It is
// ignored while the effect is switched off.
func (e *Engine) SetReverb(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.reverb.enabled {
		return
	}
	v = clampSlider(v)
	e.reverb.value = v

	for _, id := range e.ids {
		dg := e.graph.Deck(id)
		t, ok := e.bindings[bindingKey{id, script.Effects}]
		if !ok {
			dg.SetReverb(v / 100)
			continue
		}

		sliderID := "reverb-" + id
		res, got, err := t.Transform(v, id, sliderID, e.clock, dg.ReverbWet)
		wet := res
		switch {
		case err != nil:
			log.Printf("custom effects %s failed, using default: %v", sliderID, err)
			wet = script.FallbackEffect(sliderID, v)
		case !got || res == 0:
			wet = v / 100
		}
		dg.ReverbWet.Gain().Set(wet)
	}
}

// SetDelay sets the delay send slider in [0, 100] on every deck. It is
// ignored while the effect is switched off.
func (e *Engine) SetDelay(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.delay.enabled {
		return
	}
	v = clampSlider(v)
	e.delay.value = v
	for _, id := range e.ids {
		e.graph.Deck(id).SetDelay(v / 100)
	}
}

// ToggleReverb switches the reverb send on or off and reports the new
// state. Switching off zeroes the slider and leaves every deck fully dry.
func (e *Engine) ToggleReverb() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reverb.enabled = !e.reverb.enabled
	if !e.reverb.enabled {
		e.reverb.value = 0
		for _, id := range e.ids {
			e.graph.Deck(id).BypassReverb()
		}
	}
	return e.reverb.enabled
}

// ToggleDelay switches the delay send on or off and reports the new state.
func (e *Engine) ToggleDelay() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.delay.enabled = !e.delay.enabled
	if !e.delay.enabled {
		e.delay.value = 0
		for _, id := range e.ids {
			e.graph.Deck(id).BypassDelay()
		}
	}
	return e.delay.enabled
}

// Bind attaches a formula to one slider group of a deck. A nil transform
// restores the standard mapping.
func (e *Engine) Bind(id string, kind script.Kind, t script.SliderTransform) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.deck(id); err != nil {
		return err
	}
	key := bindingKey{id, kind}
	if t == nil {
		delete(e.bindings, key)
		return nil
	}
	e.bindings[key] = t
	return nil
}

// ApplyPreset compiles a preset's formulas, binds them to deck id and
// adopts its band labels. A formula that fails to compile is still bound:
// every slider move then logs the error and applies the fallback formula.
// The compile errors are returned joined.
func (e *Engine) ApplyPreset(id string, p preset.Preset) error {
	codes := []struct {
		kind script.Kind
		src  string
	}{
		{script.Volume, p.VolumeCode},
		{script.EQ, p.EQCode},
		{script.Effects, p.EffectsCode},
	}

	transforms := make(map[script.Kind]script.SliderTransform, len(codes))
	var errs []error
	for _, c := range codes {
		f, err := script.Compile(c.src)
		if err != nil {
			log.Printf("preset %q: %s formula: %v", p.Name, c.kind, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.kind, err))
			transforms[c.kind] = brokenTransform{err}
			continue
		}
		transforms[c.kind] = f
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.deck(id); err != nil {
		return err
	}
	for kind, t := range transforms {
		e.bindings[bindingKey{id, kind}] = t
	}
	e.labels = p.BandLabels()
	log.Printf("deck %s: applied preset %q", id, p.Name)
	return errors.Join(errs...)
}

// ResetFormulas removes every bound formula and restores the stock labels.
func (e *Engine) ResetFormulas() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.bindings)
	e.labels = preset.DefaultLabels()
}

// Labels returns the current EQ band labels.
func (e *Engine) Labels() preset.Labels {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels
}

// brokenTransform stands in for a formula that did not compile.
type brokenTransform struct {
	err error
}

func (b brokenTransform) Transform(float64, string, string, clock.Source, graph.Node) (float64, bool, error) {
	return 0, false, b.err
}

func clampSlider(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 100))
}
