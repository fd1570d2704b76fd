// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// A map that hands out stable integer keys for its values.  An erased
// key is never handed out again, so holding a key across an erase is
// safe: the map just no longer contains it.  ExtractAll empties the
// map and starts the key numbering over from zero.

package util

import (
	"fmt"
	"slices"
)

type IndexedMapT[V any] struct {
	entries map[uint32]V
	counter uint32
}

// Adds 'value' and returns its key.
func (m *IndexedMapT[V]) Insert(value V) uint32 {
	if m.entries == nil {
		m.entries = map[uint32]V{}
	}
	key := m.counter
	m.counter += 1
	m.entries[key] = value
	return key
}

func (m *IndexedMapT[V]) At(key uint32) V {
	value, found := m.entries[key]
	if !found {
		panic(fmt.Sprintf("indexed map has no key %d", key))
	}
	return value
}

func (m *IndexedMapT[V]) Contains(key uint32) bool {
	_, found := m.entries[key]
	return found
}

func (m *IndexedMapT[V]) Erase(key uint32) {
	delete(m.entries, key)
}

func (m *IndexedMapT[V]) Len() int {
	return len(m.entries)
}

// Removes and returns all values in insertion-key order, leaving the
// map empty.

func (m *IndexedMapT[V]) ExtractAll() []V {
	keys := make([]uint32, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	result := make([]V, 0, len(keys))
	for _, key := range keys {
		result = append(result, m.entries[key])
	}
	m.entries = nil
	m.counter = 0
	return result
}
