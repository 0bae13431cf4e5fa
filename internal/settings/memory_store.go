package settings

import "sync"

// MemoryStore is an in-process settings store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the stored value, the registered default, or "".
func (s *MemoryStore) Get(moduleID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.values[storageKey(moduleID, key)]; ok {
		return value, nil
	}

	return registeredDefault(moduleID, key), nil
}

// Set stores value for the setting.
func (s *MemoryStore) Set(moduleID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[storageKey(moduleID, key)] = value

	return nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
