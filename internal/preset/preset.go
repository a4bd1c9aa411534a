// Package preset stores named sets of slider formulas and serves them over
// HTTP. The console talks to the service through Client, which falls back
// to a local file when the service is unreachable.
package preset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linuxmatters/jivedeck/internal/script"
)

// DefaultID is the id of the seeded built-in preset.
const DefaultID = "default"

var (
	ErrNotFound      = errors.New("preset not found")
	ErrDefaultPreset = errors.New("cannot delete default preset")
	ErrMissingField  = errors.New("missing required fields")
)

// Labels are the display names of the three EQ bands.
type Labels struct {
	High string `json:"high"`
	Mid  string `json:"mid"`
	Low  string `json:"low"`
}

// DefaultLabels returns the stock band names.
func DefaultLabels() Labels {
	return Labels{High: "High", Mid: "Mid", Low: "Low"}
}

// WithDefaults fills empty band names with the stock ones.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	if l.High == "" {
		l.High = d.High
	}
	if l.Mid == "" {
		l.Mid = d.Mid
	}
	if l.Low == "" {
		l.Low = d.Low
	}
	return l
}

// Preset is a named set of slider formulas.
type Preset struct {
	Name        string    `json:"name"`
	VolumeCode  string    `json:"volumeCode"`
	EQCode      string    `json:"eqCode"`
	EffectsCode string    `json:"effectsCode"`
	Labels      *Labels   `json:"labels,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsDefault   bool      `json:"isDefault"`
}

// Validate reports ErrMissingField when any formula or the name is empty.
func (p Preset) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.VolumeCode) == "" {
		missing = append(missing, "volumeCode")
	}
	if strings.TrimSpace(p.EQCode) == "" {
		missing = append(missing, "eqCode")
	}
	if strings.TrimSpace(p.EffectsCode) == "" {
		missing = append(missing, "effectsCode")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// BandLabels returns the preset's labels with stock names for any gaps.
func (p Preset) BandLabels() Labels {
	if p.Labels == nil {
		return DefaultLabels()
	}
	return p.Labels.WithDefaults()
}

// Default returns the built-in preset.
func Default(now time.Time) Preset {
	return Preset{
		Name:        "Default Behavior",
		VolumeCode:  script.DefaultVolumeCode,
		EQCode:      script.DefaultEQCode,
		EffectsCode: script.DefaultEffectsCode,
		Timestamp:   now.UTC(),
		IsDefault:   true,
	}
}

// NewID returns a unique preset id of the form preset_<unix ms>_<suffix>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("preset_%d_%s", now.UnixMilli(), suffix)
}

// Entry pairs a preset with its id.
type Entry struct {
	ID     string
	Preset Preset
}
