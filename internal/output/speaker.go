package output

import (
	"fmt"

	"github.com/hajimehoshi/oto/v2"

	"github.com/linuxmatters/jivedeck/internal/config"
)

// Speaker plays the engine through the default audio device.
type Speaker struct {
	ctx    *oto.Context
	player oto.Player
}

// NewSpeaker opens the audio device and waits until it is ready.
func NewSpeaker(r Renderer, sampleRate int) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(sampleRate, config.Channels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	return &Speaker{
		ctx:    ctx,
		player: ctx.NewPlayer(&pcmReader{r: r}),
	}, nil
}

// Start begins playback.
func (s *Speaker) Start() {
	s.player.Play()
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	return s.player.Close()
}
