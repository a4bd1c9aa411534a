package audio

import (
	"math"
	"sort"

	"github.com/linuxmatters/jivedeck/internal/config"
)

// DetectBPM estimates tempo from amplitude peaks. It is a coarse heuristic:
// non-overlapping 100ms windows whose mean absolute amplitude exceeds the
// peak threshold mark a beat at the window start, and the median spacing
// between beats gives the tempo. The result is doubled once when below 60
// and halved once when above 200, so it can still land outside that range.
func DetectBPM(samples []float64, sampleRate int) int {
	window := int(math.Floor(float64(sampleRate) * config.BPMWindowSeconds))
	if window <= 0 {
		return config.DefaultBPM
	}

	var peaks []float64
	for start := 0; start+window <= len(samples); start += window {
		var sum float64
		for _, s := range samples[start : start+window] {
			sum += math.Abs(s)
		}
		if sum/float64(window) > config.BPMPeakThreshold {
			peaks = append(peaks, float64(start)/float64(sampleRate))
		}
	}

	if len(peaks) < 2 {
		return config.DefaultBPM
	}

	intervals := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals = append(intervals, peaks[i]-peaks[i-1])
	}
	sort.Float64s(intervals)

	median := intervals[len(intervals)/2]
	bpm := int(math.Round(60 / median))

	if bpm < config.MinBPM {
		bpm *= 2
	} else if bpm > config.MaxBPM {
		bpm = int(math.Round(float64(bpm) / 2))
	}
	return bpm
}
