// Package config provides configuration management for dungeondraw.
//
// Configuration is loaded from multiple sources with the following
// precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables
//  3. Configuration file (YAML, optionally SOPS-encrypted)
//  4. Default values (lowest priority)
//
// Environment Variables:
//   - DUNGEONDRAW_MODULE_ID: Settings namespace for custom themes (default: "dungeon-draw")
//   - DUNGEONDRAW_DATA_DIR: Directory for the settings database and log file
//   - DUNGEONDRAW_DEBUG: Enable debug logging ("true"/"false")
//   - DUNGEONDRAW_GM: Act as game master ("true"/"false", default: "true")
//   - DUNGEONDRAW_SCENE: Scene id or name used when none is given
//   - DUNGEONDRAW_LISTEN: Address the API server listens on
//   - DUNGEONDRAW_THEMES_DIR: Directory of extra built-in theme files
//
// Configuration File Format (YAML):
//
//	module_id: dungeon-draw
//	data_dir: ~/.local/share/dungeondraw
//	debug: false
//	gm: true
//	default_scene: Crypt
//	listen: 127.0.0.1:8080
//	themes_dir: ~/dungeondraw/themes
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/devnullvoid/dungeondraw/internal/logger"
)

const (
	DefaultModuleID = "dungeon-draw"
	DefaultListen   = "127.0.0.1:8080"
	envPrefix       = "DUNGEONDRAW_"
)

// DebugEnabled is set from the loaded configuration and read by components
// that decide whether to emit debug output before a logger exists.
var DebugEnabled bool

// Config is the application configuration.
type Config struct {
	ModuleID     string `yaml:"module_id"`
	DataDir      string `yaml:"data_dir"`
	Debug        bool   `yaml:"debug"`
	GM           bool   `yaml:"gm"`
	DefaultScene string `yaml:"default_scene"`
	Listen       string `yaml:"listen"`
	ThemesDir    string `yaml:"themes_dir"`
}

// NewConfig returns a configuration populated from the environment. GM
// defaults to true.
func NewConfig() *Config {
	c := &Config{GM: true}
	c.ApplyEnv(os.LookupEnv)

	return c
}

// Load reads the file at path, if any, applies the environment, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	c := &Config{GM: true}

	if path != "" {
		if err := c.MergeWithFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	c.ApplyEnv(os.LookupEnv)
	c.SetDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// ApplyEnv overrides fields with the DUNGEONDRAW_* variables lookup finds.
// Malformed booleans are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			if b, err := cast.ToBoolE(strings.ToLower(v)); err == nil {
				*dst = b
			}
		}
	}

	str("MODULE_ID", &c.ModuleID)
	str("DATA_DIR", &c.DataDir)
	boolean("DEBUG", &c.Debug)
	boolean("GM", &c.GM)
	str("SCENE", &c.DefaultScene)
	str("LISTEN", &c.Listen)
	str("THEMES_DIR", &c.ThemesDir)
}

// MergeWithFile overlays the values set in the YAML file at path. SOPS
// encrypted files are decrypted first.
func (c *Config) MergeWithFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if IsSOPSEncrypted(path, data) {
		decrypted, derr := decrypt.Data(data, "yaml")
		if derr != nil {
			return fmt.Errorf("decrypt %s: %w", path, derr)
		}
		data = decrypted

		if gl := logger.GetGlobalLogger(); gl != nil {
			gl.Debug("Decrypted config file %s", path)
		}
	}

	// Pointers tell unset values from explicit zero values.
	var fileConfig struct {
		ModuleID     string `yaml:"module_id"`
		DataDir      string `yaml:"data_dir"`
		Debug        *bool  `yaml:"debug"`
		GM           *bool  `yaml:"gm"`
		DefaultScene string `yaml:"default_scene"`
		Listen       string `yaml:"listen"`
		ThemesDir    string `yaml:"themes_dir"`
	}

	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fileConfig.ModuleID != "" {
		c.ModuleID = fileConfig.ModuleID
	}
	if fileConfig.DataDir != "" {
		c.DataDir = fileConfig.DataDir
	}
	if fileConfig.Debug != nil {
		c.Debug = *fileConfig.Debug
	}
	if fileConfig.GM != nil {
		c.GM = *fileConfig.GM
	}
	if fileConfig.DefaultScene != "" {
		c.DefaultScene = fileConfig.DefaultScene
	}
	if fileConfig.Listen != "" {
		c.Listen = fileConfig.Listen
	}
	if fileConfig.ThemesDir != "" {
		c.ThemesDir = fileConfig.ThemesDir
	}

	return nil
}

// SetDefaults fills unset options and expands home-relative paths.
func (c *Config) SetDefaults() {
	if c.ModuleID == "" {
		c.ModuleID = DefaultModuleID
	}

	if c.DataDir != "" {
		c.DataDir = ExpandHomePath(c.DataDir)
	}
	if c.DataDir == "" {
		c.DataDir = getXDGDataDir()
	}

	if c.Listen == "" {
		c.Listen = DefaultListen
	}

	if c.ThemesDir != "" {
		c.ThemesDir = ExpandHomePath(c.ThemesDir)
	}

	DebugEnabled = c.Debug
}

// Validate reports every invalid option.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ModuleID) == "" {
		errs = append(errs, errors.New("module_id must not be empty"))
	}

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		errs = append(errs, fmt.Errorf("listen address %q: %w", c.Listen, err))
	}

	if c.ThemesDir != "" {
		info, err := os.Stat(c.ThemesDir)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("themes_dir: %w", err))
		case !info.IsDir():
			errs = append(errs, fmt.Errorf("themes_dir %s is not a directory", c.ThemesDir))
		}
	}

	return errors.Join(errs...)
}

// ExpandHomePath expands a leading ~ in paths using the current user's home directory.
func ExpandHomePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}

	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return trimmed
		}
		return home
	}

	if strings.HasPrefix(trimmed, "~/") || strings.HasPrefix(trimmed, "~\\") {
		home, err := os.UserHomeDir()
		if err != nil {
			return trimmed
		}
		rest := strings.TrimPrefix(trimmed, "~")
		rest = strings.TrimPrefix(rest, "/")
		rest = strings.TrimPrefix(rest, "\\")
		return filepath.Join(home, rest)
	}

	return trimmed
}
