// Package themes implements the theme registry: the read-only built-in theme
// presets shipped with the module and the user's custom presets, persisted as
// a single JSON document in the settings store.
//
// The persisted document has the form
//
//	{"<name>": {"name": "<name>", "config": {"<option>": <value>, ...}}, ...}
//
// and is compatible with data written by earlier releases.
package themes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
)

var (
	// ErrThemeNotFound is returned when a referenced theme does not exist.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrThemeExists is returned when a rename would replace another custom theme.
	ErrThemeExists = errors.New("theme already exists")
	// ErrEmptyName is returned when a theme would be stored without a name.
	ErrEmptyName = errors.New("theme name must not be empty")
)

// Preset is a named, reusable bundle of configuration values.
type Preset struct {
	Name   string         `json:"name" yaml:"name"`
	Config dungeon.Config `json:"config" yaml:"config"`
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	return Preset{Name: p.Name, Config: p.Config.Clone()}
}

// Presets maps theme keys to presets.
type Presets map[string]Preset

// Clone returns a deep copy of p.
func (p Presets) Clone() Presets {
	out := make(Presets, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}

	return out
}

// Keys returns the theme keys in ascending order.
func (p Presets) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Parse decodes a serialized theme map. A JSON null decodes to an empty map
// and presets without a config get an empty one.
func Parse(data string) (Presets, error) {
	var themes Presets
	if err := json.Unmarshal([]byte(data), &themes); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}

	if themes == nil {
		themes = Presets{}
	}
	for k, p := range themes {
		if p.Config == nil {
			p.Config = dungeon.Config{}
			themes[k] = p
		}
	}

	return themes, nil
}

// Serialize encodes themes in the persisted format.
func Serialize(themes Presets) (string, error) {
	if themes == nil {
		themes = Presets{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(themes); err != nil {
		return "", fmt.Errorf("serialize themes: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// copyName returns the first "<base> (n)" for n = 1, 2, ... that is not a key
// of themes.
func copyName(themes Presets, base string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if _, exists := themes[candidate]; !exists {
			return candidate
		}
	}
}
