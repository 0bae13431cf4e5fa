package themes

import (
	"fmt"
	"strings"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

// SettingKey is the settings key the custom themes are stored under.
const SettingKey = "customThemes"

// Registry gives read-only access to the built-in themes and durable CRUD
// over the custom themes of one module.
//
// The registry keeps no state between calls: every operation loads the
// stored document, mutates it and saves it back. Concurrent writers race
// last-writer-wins.
type Registry struct {
	store    interfaces.SettingsStore
	moduleID string
	builtins Presets
	log      interfaces.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l interfaces.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithBuiltins replaces the embedded built-in themes.
func WithBuiltins(builtins Presets) Option {
	return func(r *Registry) {
		r.builtins = builtins.Clone()
	}
}

// NewRegistry creates a registry storing custom themes for moduleID in store.
func NewRegistry(store interfaces.SettingsStore, moduleID string, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		moduleID: moduleID,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.builtins == nil {
		r.builtins = MustLoadBuiltins()
	}
	if r.log == nil {
		r.log = logger.GetPackageLogger("themes")
	}

	return r
}

// Load returns the custom themes. A missing, unreadable or malformed stored
// value yields an empty map; the failure is logged and not returned.
func (r *Registry) Load() Presets {
	raw, err := r.store.Get(r.moduleID, SettingKey)
	if err != nil {
		r.log.Error("Failed to read custom themes: %v", err)
		return Presets{}
	}

	if strings.TrimSpace(raw) == "" {
		return Presets{}
	}

	themes, err := Parse(raw)
	if err != nil {
		r.log.Error("Discarding unreadable custom themes: %v", err)
		return Presets{}
	}

	return themes
}

// Save replaces the stored custom themes with themes.
func (r *Registry) Save(themes Presets) error {
	raw, err := Serialize(themes)
	if err != nil {
		return err
	}

	if err := r.store.Set(r.moduleID, SettingKey, raw); err != nil {
		return fmt.Errorf("save custom themes: %w", err)
	}

	return nil
}

// CreateFromConfig stores cfg as a custom theme called name. An existing
// theme with the same name is overwritten.
func (r *Registry) CreateFromConfig(name string, cfg dungeon.Config) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	if cfg == nil {
		cfg = dungeon.Config{}
	}

	themes := r.Load()
	if _, exists := themes[name]; exists {
		r.log.Debug("Overwriting custom theme %q", name)
	}
	themes[name] = Preset{Name: name, Config: cfg.Clone()}

	if err := r.Save(themes); err != nil {
		return err
	}

	r.log.Debug("Created custom theme %q with %d options", name, len(cfg))

	return nil
}

// CopyIn duplicates the preset at sourceKey inside themes under the first
// free "<name> (n)" key and returns that key. It reports false, leaving
// themes untouched, when sourceKey is absent.
func CopyIn(themes Presets, sourceKey string) (string, bool) {
	src, ok := themes[sourceKey]
	if !ok {
		return "", false
	}

	dup := src.Clone()
	dup.Name = copyName(themes, src.Name)
	themes[dup.Name] = dup

	return dup.Name, true
}

// Copy duplicates the custom theme at sourceKey and returns the new key.
// Only custom keys are probed for collisions, so a copy may share its name
// with a built-in theme. A missing source is a no-op returning "".
func (r *Registry) Copy(sourceKey string) (string, error) {
	themes := r.Load()

	newKey, ok := CopyIn(themes, sourceKey)
	if !ok {
		r.log.Debug("Copy of missing custom theme %q ignored", sourceKey)
		return "", nil
	}

	if err := r.Save(themes); err != nil {
		return "", err
	}

	r.log.Debug("Copied custom theme %q to %q", sourceKey, newKey)

	return newKey, nil
}

// Delete removes the custom theme at key. Deleting a missing key is not an
// error.
func (r *Registry) Delete(key string) error {
	themes := r.Load()
	if _, ok := themes[key]; ok {
		delete(themes, key)
		r.log.Debug("Deleted custom theme %q", key)
	}

	return r.Save(themes)
}

// Edit lets edit modify a copy of the custom theme at key and stores the
// result. When the name changes the theme moves to the new key; moving onto
// another existing custom theme fails with ErrThemeExists. It returns the
// theme's key after the edit.
func (r *Registry) Edit(key string, edit func(*Preset) error) (string, error) {
	themes := r.Load()

	current, ok := themes[key]
	if !ok {
		return "", fmt.Errorf("%w: custom %q", ErrThemeNotFound, key)
	}

	edited := current.Clone()
	if err := edit(&edited); err != nil {
		return "", err
	}

	if strings.TrimSpace(edited.Name) == "" {
		return "", ErrEmptyName
	}
	if edited.Config == nil {
		edited.Config = dungeon.Config{}
	}

	newKey := key
	if edited.Name != current.Name {
		newKey = edited.Name
	}
	if newKey != key {
		if _, exists := themes[newKey]; exists {
			return "", fmt.Errorf("%w: custom %q", ErrThemeExists, newKey)
		}
		delete(themes, key)
	}
	themes[newKey] = edited

	if err := r.Save(themes); err != nil {
		return "", err
	}

	r.log.Debug("Edited custom theme %q (now %q)", key, newKey)

	return newKey, nil
}

// Builtins returns a copy of the built-in themes.
func (r *Registry) Builtins() Presets {
	return r.builtins.Clone()
}

// BuiltinKeys returns the built-in theme keys in ascending order.
func (r *Registry) BuiltinKeys() []string {
	return r.builtins.Keys()
}

// CustomKeys returns the stored custom theme keys in ascending order.
func (r *Registry) CustomKeys() []string {
	return r.Load().Keys()
}

// Lookup returns a copy of the theme ref points to.
func (r *Registry) Lookup(ref Ref) (Preset, bool) {
	var (
		p  Preset
		ok bool
	)

	switch ref.Source {
	case SourceBuiltin:
		p, ok = r.builtins[ref.Key]
	case SourceCustom:
		p, ok = r.Load()[ref.Key]
	}

	if !ok {
		return Preset{}, false
	}

	return p.Clone(), true
}

// Import merges incoming presets into the custom themes, keyed by preset
// name. Without overwrite, a name that is already taken is stored under the
// same "<name> (n)" key a copy would get. Overwrite only replaces stored
// themes: two incoming presets sharing a name never replace each other. It
// returns the keys written, in order.
func (r *Registry) Import(incoming Presets, overwrite bool) ([]string, error) {
	themes := r.Load()

	written := make([]string, 0, len(incoming))
	batch := make(map[string]struct{}, len(incoming))
	for _, key := range incoming.Keys() {
		p := incoming[key].Clone()
		if strings.TrimSpace(p.Name) == "" {
			p.Name = key
		}
		if p.Config == nil {
			p.Config = dungeon.Config{}
		}

		_, exists := themes[p.Name]
		_, seen := batch[p.Name]
		if seen || (exists && !overwrite) {
			p.Name = copyName(themes, p.Name)
		}
		themes[p.Name] = p
		batch[p.Name] = struct{}{}
		written = append(written, p.Name)
	}

	if err := r.Save(themes); err != nil {
		return nil, err
	}

	r.log.Info("Imported %d custom themes", len(written))

	return written, nil
}

// Export returns the stored custom themes in the persisted format.
func (r *Registry) Export() (string, error) {
	return Serialize(r.Load())
}
