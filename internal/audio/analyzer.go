package audio

import (
	"math"

	"github.com/linuxmatters/jivedeck/internal/config"
)

// TrackProfile holds whole-track statistics shown when a track is analysed
type TrackProfile struct {
	Name       string
	SampleRate int
	Channels   int
	Duration   float64 // Seconds

	Peak         float64 // Highest absolute sample
	RMS          float64 // Average RMS across analysis windows
	DynamicRange float64 // Ratio of Peak to RMS

	BPM int
}

// AnalyzeTrack walks channel 0 of the track in render-loop sized windows
// and collects level statistics plus the BPM estimate.
func AnalyzeTrack(t *Track) TrackProfile {
	profile := TrackProfile{
		Name:       t.Name,
		SampleRate: t.SampleRate,
		Channels:   len(t.Channels),
		Duration:   t.Duration(),
	}
	if t.Frames() == 0 {
		profile.BPM = config.DefaultBPM
		return profile
	}

	samples := t.Channels[0]
	window := t.SampleRate / config.FPS
	if window <= 0 {
		window = len(samples)
	}

	var sumRMS float64
	var windows int
	for start := 0; start < len(samples); start += window {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}
		rms, peak := analyzeWindow(samples[start:end])
		sumRMS += rms
		windows++
		if peak > profile.Peak {
			profile.Peak = peak
		}
	}

	profile.RMS = sumRMS / float64(windows)
	if profile.RMS > 0 {
		profile.DynamicRange = profile.Peak / profile.RMS
	}
	profile.BPM = DetectBPM(samples, t.SampleRate)
	return profile
}

// analyzeWindow returns the RMS and absolute peak of a window
func analyzeWindow(chunk []float64) (rms, peak float64) {
	var sumSquares float64
	for _, s := range chunk {
		sumSquares += s * s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return math.Sqrt(sumSquares / float64(len(chunk))), peak
}

// ToDBFS converts a linear amplitude to decibels relative to full scale.
func ToDBFS(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
