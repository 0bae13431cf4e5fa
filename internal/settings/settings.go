// Package settings implements the module settings store: opaque string values
// scoped by module id and setting key, with optional registered defaults.
//
// Two backends are provided. BadgerStore persists values in a Badger database
// inside the data directory; MemoryStore keeps them in process and is used by
// tests and when persistence is disabled.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

// Store is a settings store that owns resources which must be released.
type Store interface {
	interfaces.SettingsStore

	// Close releases any resources held by the store.
	Close() error
}

// Definitions for registered settings, keyed by storage key.
var (
	defaultsMu sync.RWMutex
	defaults   = make(map[string]string)
)

// Register declares a setting and the value Get returns while it is unset.
// Registering the same setting twice replaces the default.
func Register(moduleID, key, defaultValue string) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults[storageKey(moduleID, key)] = defaultValue
}

// registeredDefault returns the registered default for a setting, or "".
func registeredDefault(moduleID, key string) string {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()

	return defaults[storageKey(moduleID, key)]
}

// storageKey is the flat key a setting is stored under.
func storageKey(moduleID, key string) string {
	return moduleID + "." + key
}

var (
	settingsLogger     interfaces.Logger
	settingsLoggerOnce sync.Once
)

func getSettingsLogger() interfaces.Logger {
	settingsLoggerOnce.Do(func() {
		settingsLogger = logger.GetPackageLogger("settings")
	})

	return settingsLogger
}

// Open opens the Badger store under dir/settings. If the database cannot be
// opened the failure is logged and an in-memory store is returned together
// with the error, so callers can decide whether to continue without
// persistence.
func Open(dir string) (Store, error) {
	badgerDir := filepath.Join(dir, "settings")
	if err := os.MkdirAll(badgerDir, 0o750); err != nil {
		getSettingsLogger().Error("Failed to create settings directory %s: %v", badgerDir, err)

		return NewMemoryStore(), fmt.Errorf("failed to create settings directory: %w", err)
	}

	store, err := NewBadgerStore(badgerDir)
	if err != nil {
		getSettingsLogger().Error("Failed to open settings database: %v", err)
		getSettingsLogger().Info("Using in-memory settings, changes will not persist")

		return NewMemoryStore(), err
	}

	getSettingsLogger().Debug("Opened settings database at %s", badgerDir)

	return store, nil
}
