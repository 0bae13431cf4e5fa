package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devnullvoid/dungeondraw/internal/logger"
)

const appDirName = "dungeondraw"

//go:embed config.tpl.yml
var templateFS embed.FS

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getXDGConfigDir(), "config.yml")
}

// CreateDefaultConfigFile writes the configuration template to the default
// path and returns it. An existing file is left alone.
func CreateDefaultConfigFile() (string, error) {
	return CreateDefaultConfigFileAt(GetDefaultConfigPath())
}

// CreateDefaultConfigFileAt writes the configuration template to path. An
// existing file is left alone.
func CreateDefaultConfigFileAt(path string) (string, error) {
	if path == "" {
		return "", errors.New("config path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	templateData, err := templateFS.ReadFile("config.tpl.yml")
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}

	if err := os.WriteFile(path, templateData, 0o600); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}

	return path, nil
}

// FindDefaultConfigPath finds the default configuration file path.
func FindDefaultConfigPath() (string, bool) {
	configPath := GetDefaultConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return configPath, true
	}

	// Check for config in current directory
	if _, err := os.Stat("config.yml"); err == nil {
		return "config.yml", true
	}

	return "", false
}

// getXDGConfigDir returns the XDG config directory path.
func getXDGConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appDirName)
	}

	return filepath.Join(homeDir, ".config", appDirName)
}

// getXDGDataDir returns the XDG data directory path.
func getXDGDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appDirName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", appDirName)
	}

	return filepath.Join(homeDir, ".local", "share", appDirName)
}

// IsSOPSEncrypted reports whether data looks like a SOPS-encrypted YAML
// document: it carries the sops metadata block and encrypted values.
func IsSOPSEncrypted(path string, data []byte) bool {
	content := string(data)
	hasSops := strings.Contains(content, "\nsops:") || strings.HasPrefix(content, "sops:")
	hasEnc := strings.Contains(content, "ENC[")

	if DebugEnabled {
		if gl := logger.GetGlobalLogger(); gl != nil {
			gl.Debug("SOPS detection for %s: hasSops=%v, hasEnc=%v", path, hasSops, hasEnc)
		}
	}

	return hasSops && hasEnc
}
