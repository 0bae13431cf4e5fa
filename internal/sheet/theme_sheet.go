package sheet

import (
	"fmt"
	"sync"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

// ThemeSheetData is what the theme editor displays.
type ThemeSheetData struct {
	Key    string         `json:"key"`
	Name   string         `json:"name"`
	Config dungeon.Config `json:"config"`
}

// ThemeSheet edits one custom theme.
type ThemeSheet struct {
	deps
	registry *themes.Registry
	parent   *ConfigSheet

	mu  sync.Mutex
	key string
}

// NewThemeSheet opens an editor for the custom theme at key without a parent
// config sheet.
func NewThemeSheet(registry *themes.Registry, key string, opts ...Option) *ThemeSheet {
	return &ThemeSheet{
		deps:     newDeps(opts),
		registry: registry,
		key:      key,
	}
}

// Key returns the key of the edited theme.
func (s *ThemeSheet) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.key
}

// ID returns the sheet id, which follows the edited theme's key.
func (s *ThemeSheet) ID() string {
	return themeSheetIDPrefix + s.Key()
}

// Data returns the edited theme.
func (s *ThemeSheet) Data() (ThemeSheetData, error) {
	key := s.Key()

	preset, ok := s.registry.Lookup(themes.Custom(key))
	if !ok {
		return ThemeSheetData{}, fmt.Errorf("%w: custom %q", themes.ErrThemeNotFound, key)
	}

	return ThemeSheetData{Key: key, Name: preset.Name, Config: preset.Config}, nil
}

// UpdateObject stores the submitted name and configuration. Options missing
// from cfg keep their values. A new name moves the theme to that key.
func (s *ThemeSheet) UpdateObject(name string, cfg dungeon.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newKey, err := s.registry.Edit(s.key, func(p *themes.Preset) error {
		if name != "" {
			p.Name = name
		}
		p.Config = p.Config.Merge(cfg.Without(fieldCustomThemeName, fieldSaveAsThemeName))
		return nil
	})
	if err != nil {
		return err
	}
	s.key = newKey

	s.renderer.Render(themeSheetIDPrefix + newKey)
	if s.parent != nil {
		s.renderer.Render(s.parent.ID())
	}

	return nil
}
