package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/linuxmatters/jivedeck/internal/audio"
)

// Monitor serves the master tap on an HTTP address with a POST /offer
// WebRTC endpoint.
type Monitor struct {
	tap         *audio.SharedAudioBuffer
	broadcaster *Broadcaster
	webrtc      *WebRTCHandler
}

// NewMonitor creates a monitor reading from tap.
func NewMonitor(tap *audio.SharedAudioBuffer) *Monitor {
	b := NewBroadcaster()
	return &Monitor{tap: tap, broadcaster: b, webrtc: NewWebRTCHandler(b)}
}

// Handler returns the monitor's routes.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/offer", m.webrtc)
	return mux
}

// Peers returns the number of connected monitor peers.
func (m *Monitor) Peers() int {
	return m.webrtc.PeerCount()
}

// Serve listens on addr and streams until ctx is cancelled.
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen: %w", err)
	}

	go m.broadcaster.Run(ctx, Frames(ctx, m.tap))

	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("monitor: listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor serve: %w", err)
	}
	return nil
}
