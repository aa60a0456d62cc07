// Package params provides the read-only parameter lookup consulted for joint
// limit overrides at solver construction time. Keys follow the convention
// "<source>_planning/joint_limits/<joint>/<field>" where field is one of
// max_position, min_position, max_velocity, or max_acceleration.
package params

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Delimiter separates path elements in lookup keys.
const Delimiter = "/"

// Lookup resolves configuration values by namespaced key. Lookups are
// read-only; the solver never writes back.
type Lookup interface {
	// Float64 returns the value stored at key and whether it was present.
	Float64(key string) (float64, bool)
}

// MapLookup is an in-memory Lookup backed by a plain map.
type MapLookup map[string]float64

// Float64 implements Lookup.
func (m MapLookup) Float64(key string) (float64, bool) {
	v, ok := m[key]
	return v, ok
}

type koanfLookup struct {
	k *koanf.Koanf
}

// NewYAMLLookup parses YAML data into a Lookup whose keys are the nested
// paths joined with Delimiter.
func NewYAMLLookup(data []byte) (Lookup, error) {
	k := koanf.New(Delimiter)
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "failed to parse joint limit overrides")
	}
	return &koanfLookup{k: k}, nil
}

// NewKoanfLookup wraps an existing koanf instance. The instance must use
// Delimiter as its key delimiter for the joint limit key convention to
// resolve.
func NewKoanfLookup(k *koanf.Koanf) Lookup {
	return &koanfLookup{k: k}
}

func (l *koanfLookup) Float64(key string) (float64, bool) {
	if !l.k.Exists(key) {
		return 0, false
	}
	return l.k.Float64(key), true
}
