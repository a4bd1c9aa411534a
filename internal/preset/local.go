package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore is the offline fallback: a JSON array of presets in a single
// file. It is safe for concurrent use.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

// NewLocalStore returns a store backed by path. The file is created on the
// first write.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// List returns the saved presets in insertion order.
func (l *LocalStore) List() ([]Preset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Append saves p at the end of the list.
func (l *LocalStore) Append(p Preset) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	presets, err := l.read()
	if err != nil {
		return err
	}
	return l.write(append(presets, p))
}

// Remove deletes the preset at index i.
func (l *LocalStore) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	presets, err := l.read()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(presets) {
		return ErrNotFound
	}
	return l.write(append(presets[:i], presets[i+1:]...))
}

func (l *LocalStore) read() ([]Preset, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local presets: %w", err)
	}
	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse local presets: %w", err)
	}
	return presets, nil
}

func (l *LocalStore) write(presets []Preset) error {
	if presets == nil {
		presets = []Preset{}
	}
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local presets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create local presets dir: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write local presets: %w", err)
	}
	return nil
}
