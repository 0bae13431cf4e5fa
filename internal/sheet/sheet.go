// Package sheet implements the form controllers behind the dungeon settings
// forms. Controllers read the current configuration and themes, apply form
// submissions and button actions, and ask a Renderer to redraw the affected
// form. They hold no presentation logic of their own.
package sheet

import (
	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

// Sheet ids, as seen by renderers.
const (
	ConfigSheetID        = "dd-config-sheet"
	DungeonConfigSheetID = "dungeon-config"
	themeSheetIDPrefix   = "dd-theme-sheet-"
)

// Tabs of the config sheet.
const (
	TabSettings = "settings"
	TabThemes   = "themes"
)

// Form fields that are not configuration options.
const (
	fieldCustomThemeName = "customThemeName"
	fieldSaveAsThemeName = "saveAsThemeName"
)

// Renderer redraws the form with the given sheet id.
type Renderer interface {
	Render(sheetID string)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(sheetID string)

// Render calls f.
func (f RenderFunc) Render(sheetID string) { f(sheetID) }

// ActiveDungeon is the drawing on the current scene.
type ActiveDungeon interface {
	State() dungeon.State
	SetConfig(dungeon.Config) error
	Reset() error
}

// SceneUpdater pushes display properties to the current scene.
type SceneUpdater interface {
	UpdateScene(dungeon.SceneProps) error
}

// Active converts a possibly nil drawing to an ActiveDungeon that compares
// equal to nil when there is no drawing.
func Active(d *dungeon.Dungeon) ActiveDungeon {
	if d == nil {
		return nil
	}

	return d
}

// deps are the collaborators shared by all sheets.
type deps struct {
	dungeon  ActiveDungeon
	scene    SceneUpdater
	renderer Renderer
	isGM     bool
	log      interfaces.Logger
}

// Option configures a sheet.
type Option func(*deps)

// WithDungeon sets the drawing the sheet edits. Without one, the sheet shows
// the defaults and configuration writes are skipped.
func WithDungeon(d ActiveDungeon) Option {
	return func(o *deps) { o.dungeon = d }
}

// WithScene sets where theme display properties are pushed.
func WithScene(s SceneUpdater) Option {
	return func(o *deps) { o.scene = s }
}

// WithRenderer sets the renderer notified after changes.
func WithRenderer(r Renderer) Option {
	return func(o *deps) { o.renderer = r }
}

// WithGM marks the user as game master. Only game masters may update the
// scene from the config sheet.
func WithGM(isGM bool) Option {
	return func(o *deps) { o.isGM = isGM }
}

// WithLogger sets the sheet logger.
func WithLogger(l interfaces.Logger) Option {
	return func(o *deps) { o.log = l }
}

func newDeps(opts []Option) deps {
	d := deps{}
	for _, opt := range opts {
		opt(&d)
	}

	if d.renderer == nil {
		d.renderer = RenderFunc(func(string) {})
	}
	if d.log == nil {
		d.log = logger.GetPackageLogger("sheet")
	}

	return d
}

// currentConfig returns the drawing's configuration, or the defaults when
// there is no drawing.
func (d *deps) currentConfig() dungeon.Config {
	if d.dungeon == nil {
		return dungeon.DefaultConfig()
	}

	if cfg := d.dungeon.State().Config; cfg != nil {
		return cfg
	}

	return dungeon.DefaultConfig()
}

func (d *deps) setConfig(cfg dungeon.Config) error {
	if d.dungeon == nil {
		d.log.Debug("No active dungeon, configuration not applied")
		return nil
	}

	return d.dungeon.SetConfig(cfg)
}

func (d *deps) reset() error {
	if d.dungeon == nil {
		d.log.Debug("No active dungeon, reset skipped")
		return nil
	}

	return d.dungeon.Reset()
}

func (d *deps) updateScene(props dungeon.SceneProps) error {
	if d.scene == nil {
		return nil
	}

	return d.scene.UpdateScene(props)
}
