// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// An ordered map from code-point intervals to values, used to find
// the ranges a candidate interval interferes with.  Ranges holding
// different registers can be live over the very same interval, so
// the key is the interval plus the register's encoding.  Keys are
// ordered by (low, high, encoding) and walks always visit entries in
// that order.

package regalloc

import (
	"github.com/google/btree"
	"github.com/nikandfor/errors"
)

// Reported when two entries land on the same (interval, register)
// key, which would mean the same register was handed out twice over
// one stretch.  With well-formed input it never escapes the
// allocator; it exists so the failure has a name.
var ErrDuplicateRange = errors.New("duplicate range")

type intervalEntryT[T any] struct {
	interval IntervalT
	encoding uint8
	value    T
}

type intervalMapT[T any] struct {
	tree *btree.BTreeG[intervalEntryT[T]]
}

func makeIntervalMap[T any]() intervalMapT[T] {
	return intervalMapT[T]{
		tree: btree.NewG(4, func(x, y intervalEntryT[T]) bool {
			if x.interval != y.interval {
				return x.interval.before(y.interval)
			}
			return x.encoding < y.encoding
		}),
	}
}

// Reports whether the key was free.  Inserting over an existing key
// leaves the map unchanged.
func (m *intervalMapT[T]) insert(interval IntervalT, encoding uint8, value T) bool {
	if m.tree.Has(intervalEntryT[T]{interval: interval, encoding: encoding}) {
		return false
	}
	m.tree.ReplaceOrInsert(intervalEntryT[T]{
		interval: interval, encoding: encoding, value: value})
	return true
}

// All values whose intervals overlap 'query', in key order.  An
// entry whose low endpoint is past query.High cannot overlap and
// neither can anything after it, so the walk stops there.
// Everything earlier is checked, because an early entry can reach
// far enough right to overlap across entries that do not.
func (m *intervalMapT[T]) overlapping(query IntervalT) []T {
	result := []T{}
	m.tree.Ascend(func(entry intervalEntryT[T]) bool {
		if query.High < entry.interval.Low {
			return false
		}
		if entry.interval.OverlapsWith(query) {
			result = append(result, entry.value)
		}
		return true
	})
	return result
}

// Removes the entry with exactly this key, if there is one.
func (m *intervalMapT[T]) remove(interval IntervalT, encoding uint8) {
	m.tree.Delete(intervalEntryT[T]{interval: interval, encoding: encoding})
}

// Removes every entry whose interval overlaps 'query'.
func (m *intervalMapT[T]) eraseIntersecting(query IntervalT) {
	doomed := []intervalEntryT[T]{}
	m.tree.Ascend(func(entry intervalEntryT[T]) bool {
		if query.High < entry.interval.Low {
			return false
		}
		if entry.interval.OverlapsWith(query) {
			doomed = append(doomed, entry)
		}
		return true
	})
	for _, entry := range doomed {
		m.remove(entry.interval, entry.encoding)
	}
}

// Removes and returns all values in key order.
func (m *intervalMapT[T]) extractAll() []T {
	result := make([]T, 0, m.tree.Len())
	m.tree.Ascend(func(entry intervalEntryT[T]) bool {
		result = append(result, entry.value)
		return true
	})
	m.tree.Clear(false)
	return result
}

func (m *intervalMapT[T]) size() int {
	return m.tree.Len()
}
