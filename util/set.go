// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

package util

// A set is a map from objects to the empty struct.

type SetT[E comparable] map[E]struct{}

// s := NewSet[int]()
//   or
// s := NewSet(1)

func NewSet[E comparable](members ...E) SetT[E] {
	set := SetT[E]{}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set
}

func (set SetT[E]) Add(members ...E) {
	for _, member := range members {
		set[member] = struct{}{}
	}
}

// Because sets are just aliased maps you can loop through them with
//   for elt, _ := range mySet { ... }
// Members() returns them in no particular order; callers that need a
// deterministic order have to sort.

func (set SetT[E]) Members() []E {
	result := make([]E, 0, len(set))
	for member := range set {
		result = append(result, member)
	}
	return result
}
