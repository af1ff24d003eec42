// Package model defines the in-memory representation of a dependency tree:
// Word, Tree, and the order-preserving maps that back FEATS/MISC and
// sentence-level comment metadata.
package model

// OrderedMap is a string-to-string map that preserves insertion order and
// deduplicates on Set (last value for a key wins, keeping the key's
// original position). It backs Word.Feats, Word.Misc, and Tree metadata,
// all of which must round-trip their key order per the CoNLL-U format.
type OrderedMap struct {
	keys   []string
	values map[string]string
}

// NewOrderedMap returns an empty OrderedMap ready for use.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]string)}
}

// Set inserts or overwrites key. The key's position is fixed on first
// insertion; later overwrites do not move it.
func (m *OrderedMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}
