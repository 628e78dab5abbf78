// Package cache holds the resolver's bidirectional symbol table and its
// negative-result sets.
package cache

import (
	"fmt"
	"sync"
)

// BiMap is a one-to-one mapping kept consistent in both directions under a
// single lock. At most one pair exists per key and per value.
type BiMap[K comparable, V comparable] struct {
	mu      sync.RWMutex
	forward map[K]V
	inverse map[V]K
}

func NewBiMap[K comparable, V comparable]() *BiMap[K, V] {
	return &BiMap[K, V]{
		forward: make(map[K]V),
		inverse: make(map[V]K),
	}
}

func (m *BiMap[K, V]) Get(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.forward[k]
	return v, ok
}

func (m *BiMap[K, V]) Inverse(v V) (K, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.inverse[v]
	return k, ok
}

// ForcePut inserts k<->v, evicting any pair that shares k or v.
// It returns the number of evicted pairs.
func (m *BiMap[K, V]) ForcePut(k K, v V) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	if old, ok := m.forward[k]; ok {
		if old == v {
			return 0
		}
		delete(m.inverse, old)
		delete(m.forward, k)
		evicted++
	}
	if oldKey, ok := m.inverse[v]; ok {
		delete(m.forward, oldKey)
		delete(m.inverse, v)
		evicted++
	}
	m.forward[k] = v
	m.inverse[v] = k
	return evicted
}

// Remove deletes the pair keyed by k.
func (m *BiMap[K, V]) Remove(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.forward[k]
	if !ok {
		return false
	}
	delete(m.forward, k)
	delete(m.inverse, v)
	return true
}

// RemoveValue deletes the pair whose value is v.
func (m *BiMap[K, V]) RemoveValue(v V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.inverse[v]
	if !ok {
		return false
	}
	delete(m.inverse, v)
	delete(m.forward, k)
	return true
}

func (m *BiMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.forward)
}

func (m *BiMap[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forward = make(map[K]V)
	m.inverse = make(map[V]K)
}

func (m *BiMap[K, V]) checkInvariant() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.forward) != len(m.inverse) {
		return fmt.Errorf("size mismatch: forward=%d inverse=%d", len(m.forward), len(m.inverse))
	}
	for k, v := range m.forward {
		if back, ok := m.inverse[v]; !ok || back != k {
			return fmt.Errorf("pair %v -> %v has no matching inverse", k, v)
		}
	}
	return nil
}
