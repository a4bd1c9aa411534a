package config

import "time"

// Engine settings
const (
	SampleRate    = 48000
	Channels      = 2
	FPS           = 60
	BlockFrames   = 480                   // frames rendered per output pull (10ms)
	FrameDuration = 20 * time.Millisecond // monitor stream frame length
	FrameSize     = 960                   // samples per channel per 20ms monitor frame
)

// Analyser settings
const (
	AnalyserSize      = 256 // FFT size of the master analyser
	AnalyserSmoothing = 0.8 // time smoothing constant between frames
	AnalyserMinDB     = -100.0
	AnalyserMaxDB     = -30.0
	SpectrumBars      = 32
)

// EQ settings
const (
	LowShelfFrequency  = 320.0
	MidPeakFrequency   = 1000.0
	MidPeakQ           = 0.5
	HighShelfFrequency = 3200.0
	EQRangeDB          = 25.0 // slider extremes map to +/- this many dB
)

// Effect settings
const (
	MaxDelaySeconds    = 1.0
	DelayFeedback      = 0.3
	DelayTimeScale     = 0.5 // delay slider 1.0 maps to 0.5s
	ImpulseSeconds     = 2.0
	ImpulseDecayPower  = 2.0
	DefaultCrossfader  = 50.0
	DefaultDeckVolume  = 100.0
	DefaultMasterLevel = 100.0
)

// BPM estimation
const (
	BPMWindowSeconds = 0.1
	BPMPeakThreshold = 0.1
	DefaultBPM       = 120
	MinBPM           = 60
	MaxBPM           = 200
)

// Waveform rendering
const (
	WaveformWidth  = 1200
	WaveformHeight = 240
	WaveformTitle  = 18.0 // title font size in points
)

// Deck identifiers in slot order
var DeckIDs = []string{"A", "B"}

// Appearance
const (
	// Waveform colour (RGB), overridable with --color
	WaveColorR = 255
	WaveColorG = 140
	WaveColorB = 0

	// Played-region and title colour
	TextColorR = 248
	TextColorG = 179
	TextColorB = 29
)
