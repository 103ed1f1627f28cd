// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import "sync"

// Memory keeps entries in a map for the life of the process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory returns an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func memoryKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Load returns the entry for key, if any.
func (m *Memory) Load(namespace, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[memoryKey(namespace, key)]
	return e, ok, nil
}

// Store writes e under key, replacing any existing entry.
func (m *Memory) Store(namespace, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[memoryKey(namespace, key)] = e
	return nil
}

// Delete removes key.
func (m *Memory) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryKey(namespace, key))
	return nil
}

// Len reports the number of stored entries across all namespaces.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
