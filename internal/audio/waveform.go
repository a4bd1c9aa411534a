package audio

import "math"

// Peak is the sample range covered by one waveform column.
type Peak struct {
	Min float64
	Max float64
}

// WaveformPeaks splits samples into width columns and returns each column's
// min/max amplitude. Columns past the end of the data are flat.
func WaveformPeaks(samples []float64, width int) []Peak {
	if width <= 0 {
		return nil
	}
	peaks := make([]Peak, width)
	step := int(math.Ceil(float64(len(samples)) / float64(width)))
	if step == 0 {
		return peaks
	}

	for col := 0; col < width; col++ {
		start := col * step
		if start >= len(samples) {
			break
		}
		end := start + step
		if end > len(samples) {
			end = len(samples)
		}

		p := Peak{Min: 1, Max: -1}
		for _, s := range samples[start:end] {
			if s < p.Min {
				p.Min = s
			}
			if s > p.Max {
				p.Max = s
			}
		}
		peaks[col] = p
	}
	return peaks
}
