package stream

import (
	"context"
	"errors"
	"math"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
)

// Frames reads the stream consumer of tap in 20ms stereo frames and
// converts them to int16. The channel closes when ctx is done or the tap
// is closed.
func Frames(ctx context.Context, tap *audio.SharedAudioBuffer) <-chan []int16 {
	out := make(chan []int16, 8)
	tap.Attach(audio.ConsumerStream)

	go func() {
		<-ctx.Done()
		tap.Detach(audio.ConsumerStream)
	}()

	go func() {
		defer close(out)
		n := config.FrameSize * config.Channels
		for {
			samples, err := tap.Read(audio.ConsumerStream, n)
			if errors.Is(err, audio.ErrBufferClosed) || len(samples) < n {
				return
			}
			select {
			case out <- toInt16(samples):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func toInt16(samples []float64) []int16 {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		pcm[i] = int16(math.Round(s * math.MaxInt16))
	}
	return pcm
}
