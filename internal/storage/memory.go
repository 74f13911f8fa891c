package storage

import (
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory KV used by tests to decouple engine logic from the
// actual persistence mechanism. A "process restart" is simulated by building
// new components over the same Memory instance.
type Memory struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failSet error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// FailSetsWith makes every subsequent Set return err, simulating storage
// exhaustion. Pass nil to restore normal behavior.
func (m *Memory) FailSetsWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// Get returns the value for key, with found=false on a missing key.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Set stores value under key.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return m.failSet
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns all keys with the given prefix, sorted.
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
