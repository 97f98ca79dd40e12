package generate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"psv/internal/sim"
)

//go:embed presets.yaml
var defaultPresetsYAML []byte

// PresetBattery is a YAML file of named input sequences.
type PresetBattery struct {
	Version int      `yaml:"version"`
	Presets []Preset `yaml:"presets"`
}

// Preset is a hand-picked input, usually one that trips up programs.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Numbers     []int  `yaml:"numbers"`
}

// Sequence validates and copies the preset's numbers.
func (p Preset) Sequence() (sim.Sequence, error) {
	seq := sim.Sequence(p.Numbers).Clone()
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return seq, nil
}

// ParsePresets decodes a battery and validates every entry.
func ParsePresets(data []byte) ([]Preset, error) {
	var b PresetBattery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse presets YAML: %w", err)
	}
	names := make(map[string]struct{}, len(b.Presets))
	for _, p := range b.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		if _, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset name %q", p.Name)
		}
		names[p.Name] = struct{}{}
		if _, err := p.Sequence(); err != nil {
			return nil, err
		}
	}
	return b.Presets, nil
}

// LoadPresets reads a battery from disk.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePresets(data)
}

// DefaultPresets returns the battery built into the binary.
func DefaultPresets() []Preset {
	presets, err := ParsePresets(defaultPresetsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded presets are invalid: %v", err))
	}
	return presets
}

// FindPreset looks a preset up by name.
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q", name)
}
