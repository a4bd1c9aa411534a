package engine

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
	"github.com/linuxmatters/jivedeck/internal/deck"
	"github.com/linuxmatters/jivedeck/internal/preset"
	"github.com/linuxmatters/jivedeck/internal/script"
)

const testRate = config.SampleRate

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Options{SampleRate: testRate, Rand: rand.New(rand.NewPCG(3, 4))})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func constantTrack(v, seconds float64) *audio.Track {
	samples := make([]float64, int(seconds*testRate))
	for i := range samples {
		samples[i] = v
	}
	return audio.NewTrack("constant", testRate, samples)
}

func clickTrack(seconds, period float64) *audio.Track {
	samples := make([]float64, int(seconds*testRate))
	step := int(period * testRate)
	burst := testRate / 10
	for start := 0; start < len(samples); start += step {
		for i := start; i < start+burst && i < len(samples); i++ {
			samples[i] = 0.8
		}
	}
	return audio.NewTrack("clicks", testRate, samples)
}

// render pulls the given number of seconds through the engine in blocks.
func render(e *Engine, seconds float64) []float64 {
	block := make([]float64, config.BlockFrames*config.Channels)
	blocks := int(math.Round(seconds * testRate / config.BlockFrames))
	for i := 0; i < blocks; i++ {
		e.Render(block)
	}
	return block
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func deckView(f Frame, id string) DeckView {
	for _, d := range f.Decks {
		if d.ID == id {
			return d
		}
	}
	return DeckView{}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t)
	f := e.Frame()

	if len(f.Decks) != 2 || f.Decks[0].ID != "A" || f.Decks[1].ID != "B" {
		t.Fatalf("decks = %+v", f.Decks)
	}
	if f.Crossfader != 50 || f.Master != 100 {
		t.Errorf("mix = %v/%v, want 50/100", f.Crossfader, f.Master)
	}
	if !f.ReverbOn || !f.DelayOn {
		t.Error("effects should start enabled")
	}
	if f.Labels != preset.DefaultLabels() {
		t.Errorf("labels = %+v", f.Labels)
	}
	if len(f.Spectrum) != config.SpectrumBars {
		t.Errorf("spectrum bars = %d, want %d", len(f.Spectrum), config.SpectrumBars)
	}
	for _, d := range f.Decks {
		if d.EQ["high"] != 50 || d.Volume != 100 {
			t.Errorf("deck %s sliders = %+v / %v", d.ID, d.EQ, d.Volume)
		}
	}
}

func TestUnknownDeck(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Play("C"); !errors.Is(err, ErrUnknownDeck) {
		t.Errorf("Play(C) error = %v, want ErrUnknownDeck", err)
	}
	if err := e.SetVolume("C", 10); !errors.Is(err, ErrUnknownDeck) {
		t.Errorf("SetVolume(C) error = %v, want ErrUnknownDeck", err)
	}
	if err := e.SetEQ("A", "treble", 10); !errors.Is(err, ErrUnknownBand) {
		t.Errorf("SetEQ(treble) error = %v, want ErrUnknownBand", err)
	}
}

func TestPlayRendersAndAdvances(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Load("A", constantTrack(0.5, 5)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Play("A"); err != nil {
		t.Fatalf("Play: %v", err)
	}

	out := render(e, 1)
	// Both dry paths at unity, centre crossfade.
	want := 0.5 * 2 * math.Sqrt2 / 2
	if !approx(out[0], want, 1e-6) || !approx(out[1], want, 1e-6) {
		t.Errorf("output = %v/%v, want %v", out[0], out[1], want)
	}

	f := e.Frame()
	a := deckView(f, "A")
	if a.State != deck.Playing || !approx(a.Position, 1, 1e-9) {
		t.Errorf("deck A = %v at %v, want playing at 1", a.State, a.Position)
	}
	if !approx(f.Time, 1, 1e-9) {
		t.Errorf("clock = %v, want 1", f.Time)
	}
}

func TestFrameReportsEndOfTrack(t *testing.T) {
	e := newTestEngine(t)
	_ = e.Load("A", constantTrack(0.2, 0.5))
	_ = e.Play("A")

	render(e, 0.6)
	f := e.Frame()
	if len(f.Ended) != 1 || f.Ended[0] != "A" {
		t.Fatalf("Ended = %v, want [A]", f.Ended)
	}
	a := deckView(f, "A")
	if a.State != deck.Stopped || a.Position != 0 {
		t.Errorf("deck A = %v at %v, want stopped at 0", a.State, a.Position)
	}

	if f := e.Frame(); len(f.Ended) != 0 {
		t.Errorf("end reported twice: %v", f.Ended)
	}
}

func TestStopSilencesDeck(t *testing.T) {
	e := newTestEngine(t)
	_ = e.Load("A", constantTrack(0.5, 5))
	_ = e.Play("A")
	render(e, 0.1)
	_ = e.Stop("A")

	// Reverb and delay sends are dry here, so only filter residue remains.
	out := render(e, 0.1)
	for i, v := range out {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("sample %d = %v after stop, want 0", i, v)
		}
	}
}

func TestVolumeStandardAndFormula(t *testing.T) {
	e := newTestEngine(t)

	_ = e.SetVolume("A", 40)
	if got := deckView(e.Frame(), "A").Gain; !approx(got, 0.4*math.Sqrt2/2, 1e-9) {
		t.Errorf("standard gain = %v", got)
	}

	def := preset.Default(testTime)
	if err := e.ApplyPreset("A", def); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	_ = e.SetVolume("A", 40)
	if got := deckView(e.Frame(), "A").Gain; !approx(got, 0.4, 1e-9) {
		t.Errorf("formula gain = %v, want 0.4", got)
	}

	// A zero result falls back to value/100.
	f, _ := script.Compile("0")
	_ = e.Bind("A", script.Volume, f)
	_ = e.SetVolume("A", 70)
	if got := deckView(e.Frame(), "A").Gain; !approx(got, 0.7, 1e-9) {
		t.Errorf("zero-result gain = %v, want 0.7", got)
	}

	_ = e.Bind("A", script.Volume, nil)
	_ = e.SetVolume("A", 100)
	if got := deckView(e.Frame(), "A").Gain; !approx(got, math.Sqrt2/2, 1e-9) {
		t.Errorf("unbound gain = %v", got)
	}
}

func TestBrokenFormulaFallsBack(t *testing.T) {
	e := newTestEngine(t)
	p := preset.Default(testTime)
	p.VolumeCode = "value *"
	p.EQCode = `setGain(sliderId)`
	p.EffectsCode = `"wet"`

	if err := e.ApplyPreset("B", p); err == nil {
		t.Fatal("ApplyPreset should report compile errors")
	}

	_ = e.SetVolume("B", 30)
	if got := deckView(e.Frame(), "B").Gain; !approx(got, 0.3, 1e-9) {
		t.Errorf("fallback volume gain = %v, want 0.3", got)
	}

	_ = e.SetEQ("B", "mid", 80)
	mid := e.graph.Deck("B").Mid
	if mid.Frequency().Value() != 1000 || !approx(mid.Gain().Value(), 9, 1e-9) {
		t.Errorf("fallback eq = %v Hz / %v dB, want 1000 / 9", mid.Frequency().Value(), mid.Gain().Value())
	}

	// Compiles, but the result is not a number.
	e.SetReverb(20)
	if got := e.graph.Deck("B").ReverbWet.Gain().Value(); !approx(got, 0.4, 1e-9) {
		t.Errorf("fallback reverb wet = %v, want 0.4", got)
	}
}

func TestEQStandardAndFormula(t *testing.T) {
	e := newTestEngine(t)

	_ = e.SetEQ("A", "high", 70)
	high := e.graph.Deck("A").High
	if !approx(high.Gain().Value(), 10, 1e-9) || high.Frequency().Value() != config.HighShelfFrequency {
		t.Errorf("standard eq = %v dB at %v Hz", high.Gain().Value(), high.Frequency().Value())
	}

	_ = e.ApplyPreset("A", preset.Default(testTime))
	_ = e.SetEQ("A", "high", 70)
	if !approx(high.Gain().Value(), 6, 1e-9) || high.Frequency().Value() != 8000 {
		t.Errorf("formula eq = %v dB at %v Hz, want 6 at 8000", high.Gain().Value(), high.Frequency().Value())
	}
	if got := deckView(e.Frame(), "A").EQ["high"]; got != 70 {
		t.Errorf("slider = %v, want 70", got)
	}
}

func TestReverbAndDelay(t *testing.T) {
	e := newTestEngine(t)
	_ = e.ApplyPreset("A", preset.Default(testTime))

	e.SetReverb(25)
	a, b := e.graph.Deck("A"), e.graph.Deck("B")
	if got := a.ReverbWet.Gain().Value(); !approx(got, 0.5, 1e-9) {
		t.Errorf("deck A formula wet = %v, want 0.5", got)
	}
	if !approx(b.ReverbWet.Gain().Value(), 0.25, 1e-9) || !approx(b.ReverbDry.Gain().Value(), 0.75, 1e-9) {
		t.Errorf("deck B wet/dry = %v/%v, want 0.25/0.75", b.ReverbWet.Gain().Value(), b.ReverbDry.Gain().Value())
	}

	e.SetDelay(50)
	for _, dg := range []struct {
		id   string
		time float64
	}{{"A", 0.25}, {"B", 0.25}} {
		d := e.graph.Deck(dg.id)
		if !approx(d.Delay.DelayTime().Value(), dg.time, 1e-9) ||
			!approx(d.DelayWet.Gain().Value(), 0.5, 1e-9) ||
			!approx(d.DelayDry.Gain().Value(), 0.75, 1e-9) {
			t.Errorf("deck %s delay = %v s, wet %v, dry %v", dg.id,
				d.Delay.DelayTime().Value(), d.DelayWet.Gain().Value(), d.DelayDry.Gain().Value())
		}
	}

	if on := e.ToggleDelay(); on {
		t.Fatal("ToggleDelay should switch off")
	}
	if b.DelayWet.Gain().Value() != 0 || b.DelayDry.Gain().Value() != 1 {
		t.Error("delay not bypassed")
	}
	e.SetDelay(90)
	if b.DelayWet.Gain().Value() != 0 {
		t.Error("SetDelay applied while off")
	}
	f := e.Frame()
	if f.DelayOn || f.Delay != 0 {
		t.Errorf("frame delay = %v on=%v, want 0 off", f.Delay, f.DelayOn)
	}

	if on := e.ToggleReverb(); on {
		t.Fatal("ToggleReverb should switch off")
	}
	if a.ReverbWet.Gain().Value() != 0 || a.ReverbDry.Gain().Value() != 1 {
		t.Error("reverb not bypassed")
	}
	if on := e.ToggleReverb(); !on {
		t.Fatal("ToggleReverb should switch back on")
	}
	e.SetReverb(10)
	if !approx(b.ReverbWet.Gain().Value(), 0.1, 1e-9) {
		t.Errorf("reverb after re-enable = %v, want 0.1", b.ReverbWet.Gain().Value())
	}
}

func TestApplyPresetLabelsAndReset(t *testing.T) {
	e := newTestEngine(t)
	p := preset.Default(testTime)
	p.Labels = &preset.Labels{High: "Hats", Low: "Kick"}

	_ = e.ApplyPreset("A", p)
	want := preset.Labels{High: "Hats", Mid: "Mid", Low: "Kick"}
	if got := e.Labels(); got != want {
		t.Errorf("labels = %+v, want %+v", got, want)
	}

	e.ResetFormulas()
	if e.Labels() != preset.DefaultLabels() {
		t.Error("labels not reset")
	}
	_ = e.SetVolume("A", 40)
	if got := deckView(e.Frame(), "A").Gain; !approx(got, 0.4*math.Sqrt2/2, 1e-9) {
		t.Errorf("gain after reset = %v, want standard", got)
	}
}

func TestAutoSync(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AutoSync(); !errors.Is(err, deck.ErrNoBPM) {
		t.Fatalf("AutoSync on empty decks error = %v, want ErrNoBPM", err)
	}

	_ = e.Load("A", clickTrack(6, 0.5))
	_ = e.Load("B", clickTrack(6, 0.6))
	if err := e.AutoSync(); err != nil {
		t.Fatalf("AutoSync: %v", err)
	}

	f := e.Frame()
	a, b := deckView(f, "A"), deckView(f, "B")
	if a.BPM != 120 || b.BPM != 100 {
		t.Fatalf("BPM = %d/%d, want 120/100", a.BPM, b.BPM)
	}
	if a.Tempo != 1.0 || !approx(b.Tempo, 1.2, 1e-9) {
		t.Errorf("tempo = %v/%v, want 1.0/1.2", a.Tempo, b.Tempo)
	}
}

func TestTransportThroughEngine(t *testing.T) {
	e := newTestEngine(t)
	_ = e.Load("B", constantTrack(0.1, 10))

	_ = e.Seek("B", 4)
	_ = e.SetCue("B")
	_ = e.SeekFraction("B", 0.9)
	if got := deckView(e.Frame(), "B").Position; !approx(got, 9, 1e-9) {
		t.Errorf("after SeekFraction position = %v, want 9", got)
	}
	_ = e.Nudge("B", -2)
	if got := deckView(e.Frame(), "B").Position; !approx(got, 7, 1e-9) {
		t.Errorf("after Nudge position = %v, want 7", got)
	}
	_ = e.ReturnToCue("B")
	if got := deckView(e.Frame(), "B").Position; !approx(got, 4, 1e-9) {
		t.Errorf("after ReturnToCue position = %v, want 4", got)
	}

	_ = e.TogglePlay("B")
	_ = e.SetTempo("B", 1.5)
	render(e, 0.5)
	v := deckView(e.Frame(), "B")
	if v.State != deck.Playing || v.Tempo != 1.5 || !approx(v.Position, 4.5, 1e-9) {
		t.Errorf("deck B = %+v", v.Snapshot)
	}
	if err := e.SetTempo("B", -1); !errors.Is(err, deck.ErrInvalidTempo) {
		t.Errorf("SetTempo(-1) error = %v", err)
	}
}

func TestRenderFeedsTap(t *testing.T) {
	tap := audio.NewSharedAudioBuffer(0)
	e, err := New(Options{SampleRate: testRate, Tap: tap})
	if err != nil {
		t.Fatal(err)
	}

	render(e, 0.01)
	if tap.Len() != 0 {
		t.Errorf("tap kept %d samples with no consumer", tap.Len())
	}

	tap.Attach(audio.ConsumerStream)
	block := make([]float64, config.BlockFrames*config.Channels)
	e.Render(block)
	if got := tap.Available(audio.ConsumerStream); got != len(block) {
		t.Errorf("tap available = %d, want %d", got, len(block))
	}
}

func TestPeaks(t *testing.T) {
	e := newTestEngine(t)
	if p := e.Peaks("A", 10); p != nil {
		t.Errorf("empty deck peaks = %v", p)
	}
	_ = e.Load("A", constantTrack(0.3, 1))
	p := e.Peaks("A", 10)
	if len(p) != 10 || !approx(p[0].Max, 0.3, 1e-9) {
		t.Errorf("peaks = %+v", p)
	}
}

// TestConcurrentRenderAndFrame exercises the lock under the race detector.
func TestConcurrentRenderAndFrame(t *testing.T) {
	e := newTestEngine(t)
	_ = e.Load("A", constantTrack(0.2, 2))
	_ = e.Play("A")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		block := make([]float64, config.BlockFrames*config.Channels)
		for i := 0; i < 100; i++ {
			e.Render(block)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			e.Frame()
			e.SetCrossfader(float64(i))
			_ = e.SetEQ("A", "low", float64(i))
		}
	}()
	wg.Wait()
}

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// TestRenderDuringLongLoad checks that tempo detection of a long track does
// not hold up the audio pull.
func TestRenderDuringLongLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a five minute track")
	}
	e := newTestEngine(t)
	long := clickTrack(300, 0.5)

	done := make(chan error, 1)
	go func() { done <- e.Load("A", long) }()
	time.Sleep(3 * time.Millisecond)

	block := make([]float64, config.BlockFrames*config.Channels)
	start := time.Now()
	e.Render(block)
	elapsed := time.Since(start)

	limit := time.Duration(config.BlockFrames) * time.Second / config.SampleRate
	if elapsed > limit {
		t.Errorf("Render of one block took %v during Load, want under %v", elapsed, limit)
	}
	if err := <-done; err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bpm := deckView(e.Frame(), "A").BPM; bpm != 120 {
		t.Errorf("BPM = %d, want 120", bpm)
	}
}
