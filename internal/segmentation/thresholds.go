package segmentation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/unalkalkan/Prompter/pkg/types"
)

const (
	// DefaultIdeal is the soft word target per slide at 50pt
	DefaultIdeal = 12
	// DefaultMaximum is the hard word ceiling per slide at 50pt
	DefaultMaximum = 18
	// DefaultPreset names the preset matching DefaultIdeal/DefaultMaximum
	DefaultPreset = "50pt"
)

// ErrInvalidThresholds is returned when a threshold pair cannot drive segmentation
var ErrInvalidThresholds = errors.New("invalid thresholds")

// presets maps a prompter font size to its word budget.
// Smaller fonts fit more words on a slide.
var presets = map[string]types.Thresholds{
	"50pt": {Ideal: 12, Maximum: 18},
	"60pt": {Ideal: 10, Maximum: 15},
}

// DefaultThresholds returns the 50pt budget
func DefaultThresholds() types.Thresholds {
	return types.Thresholds{Ideal: DefaultIdeal, Maximum: DefaultMaximum}
}

// Preset returns the thresholds registered under name
func Preset(name string) (types.Thresholds, error) {
	th, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.Thresholds{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return th, nil
}

// PresetNames returns the registered preset names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that 0 < ideal <= maximum
func Validate(th types.Thresholds) error {
	if th.Ideal <= 0 {
		return fmt.Errorf("%w: ideal must be positive, got %d", ErrInvalidThresholds, th.Ideal)
	}
	if th.Maximum < th.Ideal {
		return fmt.Errorf("%w: maximum (%d) must not be below ideal (%d)", ErrInvalidThresholds, th.Maximum, th.Ideal)
	}
	return nil
}

// Resolve combines a preset with explicit overrides. Zero overrides keep the
// preset value; an empty preset falls back to the defaults.
func Resolve(preset string, override types.Thresholds) (types.Thresholds, error) {
	th := DefaultThresholds()
	if preset != "" {
		p, err := Preset(preset)
		if err != nil {
			return types.Thresholds{}, err
		}
		th = p
	}
	return Override(th, override)
}

// Override replaces the positive fields of base with those of override and
// validates the result. Negative overrides are rejected.
func Override(base, override types.Thresholds) (types.Thresholds, error) {
	if override.Ideal < 0 || override.Maximum < 0 {
		return types.Thresholds{}, fmt.Errorf("%w: overrides must not be negative", ErrInvalidThresholds)
	}
	th := base
	if override.Ideal > 0 {
		th.Ideal = override.Ideal
	}
	if override.Maximum > 0 {
		th.Maximum = override.Maximum
	}
	if err := Validate(th); err != nil {
		return types.Thresholds{}, err
	}
	return th, nil
}
