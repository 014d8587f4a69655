package openapi

import "iter"

// OrderedMap keeps values keyed by string in document order. The zero value is
// an empty map ready for use.
type OrderedMap[V any] struct {
	keys   []string
	index  map[string]int
	values []V
}

// Set appends key with value, or replaces the value in place when key already
// exists. It reports whether the key was new.
func (m *OrderedMap[V]) Set(key string, value V) bool {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if pos, ok := m.index[key]; ok {
		m.values[pos] = value
		return false
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return true
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.index == nil {
		return zero, false
	}
	pos, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.values[pos], true
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Index returns the zero-based insertion position of key, or -1.
func (m *OrderedMap[V]) Index(key string) int {
	if m == nil || m.index == nil {
		return -1
	}
	pos, ok := m.index[key]
	if !ok {
		return -1
	}
	return pos
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates the entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for i, key := range m.keys {
			if !yield(key, m.values[i]) {
				return
			}
		}
	}
}
