package sheet

import (
	"fmt"
	"sync"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

// ConfigSheetData is what the config sheet displays.
type ConfigSheetData struct {
	Config          dungeon.Config `json:"config"`
	CustomThemes    themes.Presets `json:"customThemes"`
	CustomThemeKeys []string       `json:"customThemeKeys"`
	Themes          themes.Presets `json:"themes"`
	ThemeKeys       []string       `json:"themeKeys"`
	ActiveTab       string         `json:"activeTab"`
}

// ConfigSheet controls the module config and theme management form.
type ConfigSheet struct {
	deps
	registry *themes.Registry

	mu        sync.Mutex
	activeTab string
}

// NewConfigSheet creates a config sheet opened on activeTab; "" opens the
// settings tab.
func NewConfigSheet(registry *themes.Registry, activeTab string, opts ...Option) *ConfigSheet {
	if activeTab == "" {
		activeTab = TabSettings
	}

	return &ConfigSheet{
		deps:      newDeps(opts),
		registry:  registry,
		activeTab: activeTab,
	}
}

// ID returns the sheet id.
func (s *ConfigSheet) ID() string {
	return ConfigSheetID
}

// ActiveTab returns the selected tab.
func (s *ConfigSheet) ActiveTab() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeTab
}

// Data returns the current configuration and both theme sets.
func (s *ConfigSheet) Data() ConfigSheetData {
	custom := s.registry.Load()

	return ConfigSheetData{
		Config:          s.currentConfig(),
		CustomThemes:    custom,
		CustomThemeKeys: custom.Keys(),
		Themes:          s.registry.Builtins(),
		ThemeKeys:       s.registry.BuiltinKeys(),
		ActiveTab:       s.ActiveTab(),
	}
}

// UpdateObject applies a submitted settings form to the drawing.
func (s *ConfigSheet) UpdateObject(formData dungeon.Config) error {
	return s.setConfig(formData.Without(fieldCustomThemeName))
}

// ResetDefaults restores the default configuration.
func (s *ConfigSheet) ResetDefaults() error {
	if err := s.reset(); err != nil {
		return err
	}
	s.renderer.Render(s.ID())

	return nil
}

// ApplyTheme merges the theme's configuration into the drawing. Game masters
// also get the theme's display properties pushed to the scene.
func (s *ConfigSheet) ApplyTheme(ref themes.Ref) error {
	preset, ok := s.registry.Lookup(ref)
	if !ok {
		return fmt.Errorf("%w: %s", themes.ErrThemeNotFound, ref)
	}

	cfg := preset.Config.Clone()
	if err := s.setConfig(cfg); err != nil {
		return err
	}

	if s.isGM {
		if err := s.updateScene(cfg.SceneProps()); err != nil {
			return fmt.Errorf("update scene: %w", err)
		}
	}

	s.log.Debug("Applied theme %s", ref)
	s.renderer.Render(s.ID())

	return nil
}

// SaveAsTheme stores the submitted form as a custom theme and switches to
// the themes tab.
func (s *ConfigSheet) SaveAsTheme(name string, formData dungeon.Config) error {
	cfg := formData.Without(fieldSaveAsThemeName, fieldCustomThemeName)
	if err := s.registry.CreateFromConfig(name, cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.activeTab = TabThemes
	s.mu.Unlock()

	s.renderer.Render(s.ID())

	return nil
}

// EditTheme opens the editor for the custom theme at key.
func (s *ConfigSheet) EditTheme(key string) (*ThemeSheet, error) {
	if _, ok := s.registry.Lookup(themes.Custom(key)); !ok {
		return nil, fmt.Errorf("%w: custom %q", themes.ErrThemeNotFound, key)
	}

	ts := &ThemeSheet{
		deps:     s.deps,
		registry: s.registry,
		key:      key,
		parent:   s,
	}
	s.renderer.Render(ts.ID())

	return ts, nil
}

// CopyTheme duplicates the custom theme at key and returns the copy's key.
func (s *ConfigSheet) CopyTheme(key string) (string, error) {
	newKey, err := s.registry.Copy(key)
	if err != nil {
		return "", err
	}
	s.renderer.Render(s.ID())

	return newKey, nil
}

// DeleteTheme removes the custom theme at key.
func (s *ConfigSheet) DeleteTheme(key string) error {
	if err := s.registry.Delete(key); err != nil {
		return err
	}
	s.renderer.Render(s.ID())

	return nil
}
