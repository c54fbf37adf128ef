// Package config holds tunable evaluator limits.
//
// Limits are defaulted in code and may be overridden from a small YAML
// file, e.g.:
//
//	max_map_pairs: 100000
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits bounds the sizes the evaluator will materialize.
type Limits struct {
	// MaxMapPairs caps the number of distinct keys a constructed map may
	// hold. Exceeding it is a runtime error carrying the attempted size.
	MaxMapPairs int `yaml:"max_map_pairs"`
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{MaxMapPairs: math.MaxInt32 - 15}
}

// Load reads limits from a YAML file. Fields absent from the file keep
// their defaults.
func Load(path string) (Limits, error) {
	l := DefaultLimits()
	data, err := os.ReadFile(path)
	if err != nil {
		return l, err
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("parse limits %s: %w", path, err)
	}
	if l.MaxMapPairs <= 0 {
		l.MaxMapPairs = DefaultLimits().MaxMapPairs
	}
	return l, nil
}
