package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store on top of a Badger database.
type BadgerStore struct {
	db     *badger.DB
	stopGC chan struct{}
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	lockFilePath := filepath.Join(dir, "LOCK")
	if _, err := os.Stat(lockFilePath); err == nil {
		if isStale, err := isLockFileStale(lockFilePath); err != nil {
			getSettingsLogger().Debug("Failed to check if lock file is stale: %v", err)
		} else if isStale {
			getSettingsLogger().Debug("Removing stale lock file")

			if err := os.Remove(lockFilePath); err != nil {
				return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
			}
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	// Settings are a handful of small strings.
	opts.ValueLogFileSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		if os.IsExist(err) || isErrorTemporarilyUnavailable(err) {
			return nil, fmt.Errorf("failed to open badger database (likely another process is using it): %w", err)
		}

		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	store := &BadgerStore{
		db:     db,
		stopGC: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				err := db.RunValueLogGC(0.5)
				if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					getSettingsLogger().Debug("Badger value log GC failed: %v", err)
				}
			case <-store.stopGC:
				return
			}
		}
	}()

	return store, nil
}

// isLockFileStale reports whether the process recorded in a Badger lock file
// is gone.
func isLockFileStale(lockFilePath string) (bool, error) {
	// #nosec G304 -- lockFilePath is constructed internally
	data, err := os.ReadFile(lockFilePath)
	if err != nil {
		return false, fmt.Errorf("failed to read lock file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		getSettingsLogger().Debug("Lock file has invalid format, considering stale")
		return true, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return true, nil
	}

	// Signal 0 only probes for existence.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		getSettingsLogger().Debug("Cannot signal process %d: %v, lock is stale", pid, err)
		return true, nil
	}

	return false, nil
}

func isErrorTemporarilyUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EAGAIN || errno == syscall.EWOULDBLOCK
	}

	return err.Error() == "resource temporarily unavailable"
}

// Get returns the stored value, the registered default, or "".
func (s *BadgerStore) Get(moduleID, key string) (string, error) {
	var (
		value string
		found bool
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(storageKey(moduleID, key)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("badger get operation: %w", err)
		}

		return item.Value(func(val []byte) error {
			value = string(val)
			found = true

			return nil
		})
	})
	if err != nil {
		return "", err
	}

	if !found {
		getSettingsLogger().Debug("Setting %s.%s unset, using default", moduleID, key)

		return registeredDefault(moduleID, key), nil
	}

	return value, nil
}

// Set stores value for the setting.
func (s *BadgerStore) Set(moduleID, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(storageKey(moduleID, key)), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger set operation: %w", err)
	}

	getSettingsLogger().Debug("Stored setting %s.%s (%d bytes)", moduleID, key, len(value))

	return nil
}

// Close stops the GC goroutine and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopGC)

	return s.db.Close()
}
