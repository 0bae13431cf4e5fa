package sheet

import (
	"fmt"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

// DungeonSheetData is what the dungeon config sheet displays.
type DungeonSheetData struct {
	Object    dungeon.Config `json:"object"`
	Themes    themes.Presets `json:"themes"`
	ThemeKeys []string       `json:"themeKeys"`
}

// DungeonConfigSheet controls the per-scene dungeon form. Its theme picker
// offers the built-in themes only.
type DungeonConfigSheet struct {
	deps
	registry *themes.Registry
}

// NewDungeonConfigSheet creates a dungeon config sheet.
func NewDungeonConfigSheet(registry *themes.Registry, opts ...Option) *DungeonConfigSheet {
	return &DungeonConfigSheet{deps: newDeps(opts), registry: registry}
}

// ID returns the sheet id.
func (s *DungeonConfigSheet) ID() string {
	return DungeonConfigSheetID
}

// Data returns the current configuration and the built-in themes.
func (s *DungeonConfigSheet) Data() DungeonSheetData {
	return DungeonSheetData{
		Object:    s.currentConfig(),
		Themes:    s.registry.Builtins(),
		ThemeKeys: s.registry.BuiltinKeys(),
	}
}

// UpdateObject applies a submitted form to the drawing.
func (s *DungeonConfigSheet) UpdateObject(formData dungeon.Config) error {
	return s.setConfig(formData)
}

// ResetDefaults restores the default configuration.
func (s *DungeonConfigSheet) ResetDefaults() error {
	if err := s.reset(); err != nil {
		return err
	}
	s.renderer.Render(s.ID())

	return nil
}

// ChangeTheme applies the built-in theme at key and pushes its display
// properties to the scene. An empty key, the picker's blank entry, does
// nothing.
func (s *DungeonConfigSheet) ChangeTheme(key string) error {
	if key == "" {
		return nil
	}

	ref := themes.Builtin(key)
	preset, ok := s.registry.Lookup(ref)
	if !ok {
		return fmt.Errorf("%w: %s", themes.ErrThemeNotFound, ref)
	}

	cfg := preset.Config.Clone()
	if err := s.setConfig(cfg); err != nil {
		return err
	}
	if err := s.updateScene(cfg.SceneProps()); err != nil {
		return fmt.Errorf("update scene: %w", err)
	}

	s.log.Debug("Changed dungeon theme to %s", key)
	s.renderer.Render(s.ID())

	return nil
}
