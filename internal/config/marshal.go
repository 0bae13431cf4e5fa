package config

import "gopkg.in/yaml.v3"

// marshaledConfig is the structure written to disk. Options equal to their
// defaults are left out.
type marshaledConfig struct {
	ModuleID     string `yaml:"module_id,omitempty"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Debug        bool   `yaml:"debug,omitempty"`
	GM           *bool  `yaml:"gm,omitempty"`
	DefaultScene string `yaml:"default_scene,omitempty"`
	Listen       string `yaml:"listen,omitempty"`
	ThemesDir    string `yaml:"themes_dir,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (c *Config) MarshalYAML() (any, error) {
	if c == nil {
		return nil, nil
	}

	clean := marshaledConfig{
		DataDir:      c.DataDir,
		Debug:        c.Debug,
		DefaultScene: c.DefaultScene,
		ThemesDir:    c.ThemesDir,
	}
	if c.ModuleID != DefaultModuleID {
		clean.ModuleID = c.ModuleID
	}
	if c.Listen != DefaultListen {
		clean.Listen = c.Listen
	}
	if !c.GM {
		gm := false
		clean.GM = &gm
	}

	return clean, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
