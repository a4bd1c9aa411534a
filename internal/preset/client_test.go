package preset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) (*Client, *LocalStore) {
	t.Helper()
	local := NewLocalStore(filepath.Join(t.TempDir(), "djPresets.json"))
	return NewClient(url, timeout, local), local
}

func TestClientAgainstService(t *testing.T) {
	srv, _ := newTestServer(t)
	c, local := newTestClient(t, srv.URL, time.Second)
	ctx := context.Background()

	id, fallback, err := c.Save(ctx, samplePreset("Remote"))
	if err != nil || fallback {
		t.Fatalf("Save = %q, %v, %v", id, fallback, err)
	}

	listing, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Fallback {
		t.Error("List used fallback with service up")
	}
	if len(listing.Entries) != 2 {
		t.Errorf("entries = %d, want default plus saved", len(listing.Entries))
	}

	p, err := c.Get(ctx, id)
	if err != nil || p.Name != "Remote" {
		t.Errorf("Get = %+v, %v", p, err)
	}
	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := c.Delete(ctx, DefaultID); err == nil {
		t.Error("deleting default succeeded")
	} else {
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
			t.Errorf("Delete(default) error = %v, want 400 StatusError", err)
		}
	}
	if err := c.Delete(ctx, id); err != nil {
		t.Errorf("Delete: %v", err)
	}

	if list, _ := local.List(); len(list) != 0 {
		t.Errorf("local store used with service up: %+v", list)
	}
}

func TestClientFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := newTestClient(t, url, time.Second)
	ctx := context.Background()

	id, fallback, err := c.Save(ctx, samplePreset("Offline"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !fallback || !strings.HasPrefix(id, LocalPrefix) {
		t.Errorf("Save = %q, fallback=%v; want local id", id, fallback)
	}

	listing, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !listing.Fallback || len(listing.Entries) != 1 || listing.Entries[0].Preset.Name != "Offline" {
		t.Errorf("listing = %+v", listing)
	}

	p, err := c.Get(ctx, id)
	if err != nil || p.Name != "Offline" {
		t.Errorf("Get(local) = %+v, %v", p, err)
	}

	if err := c.Delete(ctx, id); err != nil {
		t.Errorf("Delete(local): %v", err)
	}
	if listing, _ := c.List(ctx); len(listing.Entries) != 0 {
		t.Errorf("entries after delete = %d", len(listing.Entries))
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := newTestClient(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	listing, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !listing.Fallback {
		t.Error("expected fallback after timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("List took %v, timeout not applied", elapsed)
	}
}

func TestClientSaveValidates(t *testing.T) {
	c, local := newTestClient(t, "http://127.0.0.1:1", time.Second)
	if _, _, err := c.Save(context.Background(), Preset{Name: "empty"}); !errors.Is(err, ErrMissingField) {
		t.Errorf("Save error = %v, want ErrMissingField", err)
	}
	if list, _ := local.List(); len(list) != 0 {
		t.Error("invalid preset saved locally")
	}
}
