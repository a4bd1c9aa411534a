package preset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LocalPrefix marks ids of presets held in the local fallback store.
const LocalPrefix = "local:"

// StatusError is a non-2xx reply from the preset service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("preset service returned %d", e.Code)
	}
	return fmt.Sprintf("preset service returned %d: %s", e.Code, e.Message)
}

// Listing is the result of Client.List.
type Listing struct {
	Entries  []Entry
	Fallback bool // entries came from the local store
}

// Client talks to the preset service. Every request is bounded by the
// client timeout; List and Save fall back to the local store on failure.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	local   *LocalStore
	now     func() time.Time
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, local *LocalStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		local:   local,
		now:     time.Now,
	}
}

// List returns all presets, from the service when reachable.
func (c *Client) List(ctx context.Context) (Listing, error) {
	var presets map[string]Preset
	err := c.do(ctx, http.MethodGet, "/api/presets", nil, &presets)
	if err == nil {
		return Listing{Entries: Sorted(presets)}, nil
	}
	log.Printf("presets: service unavailable, using local store: %v", err)

	local, lerr := c.local.List()
	if lerr != nil {
		return Listing{}, errors.Join(err, lerr)
	}
	entries := make([]Entry, len(local))
	for i, p := range local {
		entries[i] = Entry{ID: LocalPrefix + strconv.Itoa(i), Preset: p}
	}
	return Listing{Entries: entries, Fallback: true}, nil
}

// Get fetches one preset. Local ids are read from the fallback store.
func (c *Client) Get(ctx context.Context, id string) (Preset, error) {
	if i, ok := localIndex(id); ok {
		local, err := c.local.List()
		if err != nil {
			return Preset{}, err
		}
		if i >= len(local) {
			return Preset{}, ErrNotFound
		}
		return local[i], nil
	}

	var p Preset
	if err := c.do(ctx, http.MethodGet, "/api/presets/"+url.PathEscape(id), nil, &p); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Save stores p on the service, or locally when the service cannot take it.
// The returned bool reports whether the local store was used.
func (c *Client) Save(ctx context.Context, p Preset) (string, bool, error) {
	if err := p.Validate(); err != nil {
		return "", false, err
	}

	var resp struct {
		PresetID string `json:"presetId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/presets", createRequest{
		Name:        p.Name,
		VolumeCode:  p.VolumeCode,
		EQCode:      p.EQCode,
		EffectsCode: p.EffectsCode,
		Labels:      p.Labels,
	}, &resp)
	if err == nil {
		return resp.PresetID, false, nil
	}
	log.Printf("presets: service unavailable, saving locally: %v", err)

	p.Timestamp = c.now().UTC()
	p.IsDefault = false
	if lerr := c.local.Append(p); lerr != nil {
		return "", true, errors.Join(err, lerr)
	}
	local, lerr := c.local.List()
	if lerr != nil {
		return "", true, lerr
	}
	return LocalPrefix + strconv.Itoa(len(local)-1), true, nil
}

// Delete removes a preset from wherever its id says it lives.
func (c *Client) Delete(ctx context.Context, id string) error {
	if i, ok := localIndex(id); ok {
		return c.local.Remove(i)
	}
	return c.do(ctx, http.MethodDelete, "/api/presets/"+url.PathEscape(id), nil, nil)
}

func localIndex(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, LocalPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
