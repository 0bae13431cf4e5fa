package themes

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// builtinAsset is the on-disk form of a built-in theme. Key defaults to Name.
type builtinAsset struct {
	Key    string         `yaml:"key"`
	Name   string         `yaml:"name"`
	Config map[string]any `yaml:"config"`
}

// LoadBuiltins decodes the built-in themes shipped with the module.
func LoadBuiltins() (Presets, error) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}

	return LoadBuiltinsFS(sub)
}

// MustLoadBuiltins is LoadBuiltins for package initialization; the shipped
// assets are part of the build, so a decode failure panics.
func MustLoadBuiltins() Presets {
	builtins, err := LoadBuiltins()
	if err != nil {
		panic(fmt.Sprintf("themes: invalid built-in theme asset: %v", err))
	}

	return builtins
}

// LoadBuiltinsDir decodes every *.yaml and *.yml theme in dir.
func LoadBuiltinsDir(dir string) (Presets, error) {
	return LoadBuiltinsFS(os.DirFS(dir))
}

// LoadBuiltinsFS decodes every *.yaml and *.yml theme at the root of fsys.
// Two assets with the same key are an error.
func LoadBuiltinsFS(fsys fs.FS) (Presets, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read theme directory: %w", err)
	}

	out := Presets{}
	sources := map[string]string{}

	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read theme %s: %w", entry.Name(), err)
		}

		var asset builtinAsset
		if err := yaml.Unmarshal(data, &asset); err != nil {
			return nil, fmt.Errorf("decode theme %s: %w", entry.Name(), err)
		}
		if asset.Name == "" {
			return nil, fmt.Errorf("decode theme %s: %w", entry.Name(), ErrEmptyName)
		}

		key := asset.Key
		if key == "" {
			key = asset.Name
		}
		if prev, dup := sources[key]; dup {
			return nil, fmt.Errorf("theme key %q defined in both %s and %s", key, prev, entry.Name())
		}
		sources[key] = entry.Name()

		cfg := dungeon.Config{}
		for k, v := range asset.Config {
			cfg[k] = normalizeNumber(v)
		}
		out[key] = Preset{Name: asset.Name, Config: cfg}
	}

	return out, nil
}

// normalizeNumber turns YAML integers into float64 so built-in configs hold
// the same value types as configs decoded from JSON.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case map[string]any:
		m := make(map[string]any, len(n))
		for k, inner := range n {
			m[k] = normalizeNumber(inner)
		}
		return m
	case []any:
		s := make([]any, len(n))
		for i, inner := range n {
			s[i] = normalizeNumber(inner)
		}
		return s
	default:
		return v
	}
}
