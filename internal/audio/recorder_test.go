package audio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.wav")

	rec, err := NewRecorder(path, 48000, 2)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	buf := NewSharedAudioBuffer(0)
	buf.Attach(ConsumerRecorder)

	done := make(chan error, 1)
	go func() { done <- rec.Drain(buf, 960) }()

	// 100 stereo frames: left ramps up, right is clipped
	interleaved := make([]float64, 0, 200)
	for i := 0; i < 100; i++ {
		interleaved = append(interleaved, float64(i)/100, 2.0)
	}
	if err := buf.Write(interleaved); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	buf.Close()

	if err := <-done; err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if rec.Frames() != 100 {
		t.Errorf("Frames = %d, want 100", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	track, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if track.Frames() != 100 || len(track.Channels) != 2 {
		t.Fatalf("decoded %d frames x %d channels, want 100 x 2", track.Frames(), len(track.Channels))
	}
	if math.Abs(track.Channels[0][50]-0.5) > 1e-3 {
		t.Errorf("left[50] = %v, want 0.5", track.Channels[0][50])
	}
	if math.Abs(track.Channels[1][10]-32767.0/32768.0) > 1e-3 {
		t.Errorf("right[10] = %v, want clipped full scale", track.Channels[1][10])
	}
}
