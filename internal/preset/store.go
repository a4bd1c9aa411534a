package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store keeps presets in a JSON file as an object keyed by id. It is safe
// for concurrent use.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore opens the store at path, seeding it with the default preset when
// the file does not exist.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat presets file: %w", err)
	}
	return s.write(map[string]Preset{DefaultID: Default(s.now())})
}

// All returns every preset keyed by id.
func (s *Store) All() (map[string]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Get returns one preset.
func (s *Store) Get(id string) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return Preset{}, err
	}
	p, ok := presets[id]
	if !ok {
		return Preset{}, ErrNotFound
	}
	return p, nil
}

// Create validates p, assigns a new id and timestamp, and saves it.
func (s *Store) Create(p Preset) (string, Preset, error) {
	if err := p.Validate(); err != nil {
		return "", Preset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return "", Preset{}, err
	}

	now := s.now()
	id := NewID(now)
	p.Timestamp = now.UTC()
	p.IsDefault = false
	presets[id] = p

	if err := s.write(presets); err != nil {
		return "", Preset{}, err
	}
	return id, p, nil
}

// Delete removes a preset. The default preset cannot be removed.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return err
	}
	p, ok := presets[id]
	if !ok {
		return ErrNotFound
	}
	if p.IsDefault {
		return ErrDefaultPreset
	}
	delete(presets, id)
	return s.write(presets)
}

func (s *Store) read() (map[string]Preset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	presets := make(map[string]Preset)
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return presets, nil
}

// write replaces the file through a temporary file in the same directory.
func (s *Store) write(presets map[string]Preset) error {
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".presets-*.json")
	if err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write presets: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

// Sorted returns presets ordered by timestamp, then id.
func Sorted(presets map[string]Preset) []Entry {
	entries := make([]Entry, 0, len(presets))
	for id, p := range presets {
		entries = append(entries, Entry{ID: id, Preset: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Preset.Timestamp, entries[j].Preset.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
