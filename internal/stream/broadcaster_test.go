package stream

import (
	"context"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	if b.ListenerCount() != 0 {
		t.Fatalf("initial ListenerCount = %d, want 0", b.ListenerCount())
	}

	l1 := b.Subscribe()
	l2 := b.Subscribe()
	if b.ListenerCount() != 2 {
		t.Errorf("ListenerCount = %d, want 2", b.ListenerCount())
	}

	b.Unsubscribe(l1)
	select {
	case <-l1.Done():
	default:
		t.Error("Done not closed after Unsubscribe")
	}
	b.Unsubscribe(l1) // second call must not panic
	b.Unsubscribe(l2)
	if b.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", b.ListenerCount())
	}
}

func TestBroadcastDeliversToAll(t *testing.T) {
	b := NewBroadcaster()
	listeners := []*Listener{b.Subscribe(), b.Subscribe(), b.Subscribe()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := make(chan []int16, 1)
	go b.Run(ctx, source)

	source <- []int16{7, -7}
	for i, l := range listeners {
		select {
		case got := <-l.C:
			if len(got) != 2 || got[0] != 7 || got[1] != -7 {
				t.Errorf("listener %d got %v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("listener %d timed out", i)
		}
	}
}

func TestBroadcastDropsForSlowListener(t *testing.T) {
	b := NewBroadcaster()
	slow := b.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := make(chan []int16)
	done := make(chan struct{})
	go func() {
		b.Run(ctx, source)
		close(done)
	}()

	// Unbuffered source: each send completes only once Run has taken the frame.
	for i := 0; i < listenerBuffer+50; i++ {
		source <- []int16{int16(i)}
	}
	close(source)
	<-done

	if got := len(slow.C); got != listenerBuffer {
		t.Errorf("slow listener holds %d frames, want %d", got, listenerBuffer)
	}
	if first := <-slow.C; first[0] != 0 {
		t.Errorf("first kept frame = %d, want 0", first[0])
	}
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, make(chan []int16))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
