// internal/kv/kv.go
//
// Namespaced key-value persistence for per-player state: game progress,
// statistics, session id, onboarding flag. This is the server-side analog of
// the web client's localStorage, and it is deliberately error-free: a store
// that cannot read a key reports absence, and upstream code falls back to
// fresh-start behavior rather than failing the game.
//
// Characteristics of the in-memory implementation:
//   - Stores string values keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; see file.go for durability.

package kv

import "sync"

// Store is the get/set/remove primitive the progress codec and statistics
// aggregator are written against.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string)

	// Remove deletes key if present.
	Remove(key string)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu   sync.RWMutex      // guards items map
	items map[string]string
}

// NewMemory constructs a new in-memory Store.
func NewMemory() Store {
	return &memory{items: make(map[string]string)}
}

func (m *memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}
