package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presets bundles split parameters that would otherwise be repeated on every
// invocation. Explicit command-line flags take precedence over values loaded
// from a presets file.
type Presets struct {
	Split         []float64 `yaml:"split"`
	Supercategory string    `yaml:"supercategory"`
	PerClass      int       `yaml:"per_class"`
	Workers       int       `yaml:"workers"`
}

// LoadPresets reads a YAML presets file.
func LoadPresets(path string) (*Presets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	if p.Split != nil && len(p.Split) != 3 {
		return nil, fmt.Errorf("presets %s: split must have exactly 3 fractions, got %d", path, len(p.Split))
	}
	return &p, nil
}
