// Package bootstrap turns command-line options into a ready set of services:
// configuration, logging, the settings store, the theme registry and the
// scene store.
package bootstrap

import (
	"errors"
	"fmt"
	"os"

	"github.com/devnullvoid/dungeondraw/internal/config"
	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/internal/scene"
	"github.com/devnullvoid/dungeondraw/internal/settings"
	"github.com/devnullvoid/dungeondraw/internal/sheet"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

// Options are the command-line overrides. Empty values leave the loaded
// configuration alone.
type Options struct {
	ConfigPath string
	ModuleID   string
	DataDir    string
	Scene      string
	Listen     string
	ThemesDir  string
	Debug      bool
	// GM overrides the configured role when set.
	GM        *bool
	NoPersist bool
	// Quiet discards all log output.
	Quiet bool
}

// App holds the services shared by the commands.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger
	Settings   settings.Store
	Registry   *themes.Registry
	Scenes     *scene.Store
}

// ErrNoScene is returned when a command needs a scene and none is selected.
var ErrNoScene = errors.New("no scene selected; pass --scene or set default_scene")

// Bootstrap loads the configuration and opens the services.
func Bootstrap(opts Options) (*App, error) {
	configPath := ResolveConfigPath(opts.ConfigPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyOptions(cfg, opts)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !opts.NoPersist {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	log := openLogger(cfg, opts)

	var store settings.Store
	if opts.NoPersist {
		store = settings.NewMemoryStore()
	} else {
		store, err = settings.Open(cfg.DataDir)
		if err != nil {
			log.Error("Settings will not persist: %v", err)
		}
	}
	settings.Register(cfg.ModuleID, themes.SettingKey, "{}")

	builtins, err := loadBuiltins(cfg.ThemesDir, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     log,
		Settings:   store,
		Registry: themes.NewRegistry(store, cfg.ModuleID,
			themes.WithBuiltins(builtins),
			themes.WithLogger(log.WithComponent("themes")),
		),
		Scenes: scene.NewStore(store, log.WithComponent("scene")),
	}

	log.Debug("Bootstrapped module %s with data dir %s", cfg.ModuleID, cfg.DataDir)

	return app, nil
}

// openLogger installs the global logger: a discarding one when quiet, stderr
// when settings are not persisted and the data directory log file otherwise.
func openLogger(cfg *config.Config, opts Options) *logger.Logger {
	level := logger.LevelInfo
	if cfg.Debug {
		level = logger.LevelDebug
	}

	switch {
	case opts.Quiet:
		logger.SetGlobalLogger(logger.NewNopLogger())
	case opts.NoPersist:
		logger.SetGlobalLogger(logger.NewSimpleLogger(level))
	default:
		if err := logger.InitGlobalLogger(level, cfg.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)

			// The stderr fallback shares the terminal with command output.
			if log := logger.GetGlobalLogger(); log.GetLevel() == logger.LevelInfo {
				log.SetLevel(logger.LevelError)
			}
		}
	}

	return logger.GetGlobalLogger()
}

func applyOptions(cfg *config.Config, opts Options) {
	if opts.ModuleID != "" {
		cfg.ModuleID = opts.ModuleID
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Scene != "" {
		cfg.DefaultScene = opts.Scene
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.ThemesDir != "" {
		cfg.ThemesDir = opts.ThemesDir
	}
	if opts.Debug {
		cfg.Debug = true
	}
	if opts.GM != nil {
		cfg.GM = *opts.GM
	}
}

// loadBuiltins returns the shipped themes overlaid with the themes in dir.
// Themes that fail validation are kept and logged.
func loadBuiltins(dir string, log *logger.Logger) (themes.Presets, error) {
	builtins, err := themes.LoadBuiltins()
	if err != nil {
		return nil, err
	}

	if dir != "" {
		extra, err := themes.LoadBuiltinsDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load themes from %s: %w", dir, err)
		}
		for key, preset := range extra {
			builtins[key] = preset
		}
		log.Debug("Loaded %d themes from %s", len(extra), dir)
	}

	for _, key := range builtins.Keys() {
		if err := dungeon.Validate(builtins[key].Config); err != nil {
			log.Error("Built-in theme %s has invalid options: %v", key, err)
		}
	}

	return builtins, nil
}

// Close releases the settings store and the log file.
func (a *App) Close() error {
	var errs []error
	if a.Settings != nil {
		errs = append(errs, a.Settings.Close())
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}

	return errors.Join(errs...)
}

// Scene resolves ref, an id or name, falling back to the configured default
// scene and then to the only scene if there is exactly one.
func (a *App) Scene(ref string) (scene.Scene, error) {
	if ref == "" {
		ref = a.Config.DefaultScene
	}
	if ref != "" {
		return a.Scenes.Find(ref)
	}

	list, err := a.Scenes.List()
	if err != nil {
		return scene.Scene{}, err
	}
	if len(list) == 1 {
		return list[0], nil
	}

	return scene.Scene{}, ErrNoScene
}

// SheetOptions binds the sheet collaborators to sc. With create set, a scene
// without a drawing gets one.
func (a *App) SheetOptions(sc scene.Scene, create bool, renderer sheet.Renderer) ([]sheet.Option, error) {
	d, err := a.Scenes.Dungeon(sc.ID, create)
	if err != nil {
		return nil, err
	}

	opts := []sheet.Option{
		sheet.WithDungeon(sheet.Active(d)),
		sheet.WithScene(a.Scenes.Updater(sc.ID)),
		sheet.WithGM(a.Config.GM),
		sheet.WithLogger(a.Logger.WithComponent("sheet")),
	}
	if renderer != nil {
		opts = append(opts, sheet.WithRenderer(renderer))
	}

	return opts, nil
}

// ResolveConfigPath resolves the configuration file path.
func ResolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	if path, found := config.FindDefaultConfigPath(); found {
		return path
	}

	return ""
}
