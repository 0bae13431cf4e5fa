// Package dungeon models the configuration object that controls how a
// dungeon drawing is styled, together with the option schema used to parse
// and validate form input.
package dungeon

import (
	"encoding/json"
	"sort"
)

// Config is the full or partial set of named options for a dungeon. Values are
// strings, numbers (float64) or booleans. The registry and the form
// controllers treat it as opaque.
type Config map[string]any

// Keys of the scene display properties a configuration may carry.
const (
	KeySceneBackgroundColor = "sceneBackgroundColor"
	KeySceneGridAlpha       = "sceneGridAlpha"
	KeySceneGridColor       = "sceneGridColor"
)

// Clone returns a deep copy of c. A nil config clones to nil.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}

	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Config:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

// Merge returns a new config holding c overlaid with overrides.
func (c Config) Merge(overrides Config) Config {
	out := c.Clone()
	if out == nil {
		out = make(Config, len(overrides))
	}

	for k, v := range overrides {
		out[k] = cloneValue(v)
	}

	return out
}

// Without returns a copy of c with keys removed.
func (c Config) Without(keys ...string) Config {
	out := c.Clone()
	for _, k := range keys {
		delete(out, k)
	}

	return out
}

// Keys returns the option names in ascending order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Equal reports whether two configs serialize identically.
func (c Config) Equal(other Config) bool {
	if len(c) != len(other) {
		return false
	}

	a, errA := json.Marshal(c)
	b, errB := json.Marshal(other)

	return errA == nil && errB == nil && string(a) == string(b)
}

// SceneProps are the scene display properties a theme may push to the scene.
// A nil field means the configuration does not carry that property.
type SceneProps struct {
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	GridAlpha       *float64 `json:"gridAlpha,omitempty"`
	GridColor       *string  `json:"gridColor,omitempty"`
}

// IsZero reports whether no property is set.
func (p SceneProps) IsZero() bool {
	return p.BackgroundColor == nil && p.GridAlpha == nil && p.GridColor == nil
}

// SceneProps extracts the scene display properties carried by c.
func (c Config) SceneProps() SceneProps {
	var props SceneProps

	if v, ok := c[KeySceneBackgroundColor]; ok {
		s := toString(v)
		props.BackgroundColor = &s
	}
	if v, ok := c[KeySceneGridAlpha]; ok {
		if f, err := toFloat(v); err == nil {
			props.GridAlpha = &f
		}
	}
	if v, ok := c[KeySceneGridColor]; ok {
		s := toString(v)
		props.GridColor = &s
	}

	return props
}

// copyDefaults is shared by DefaultConfig and Schema.Defaults.
func copyDefaults(options []Option) Config {
	cfg := make(Config, len(options))
	for _, opt := range options {
		cfg[opt.Name] = opt.Default
	}

	return cfg
}
