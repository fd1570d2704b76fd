// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

package util

import (
	"slices"
	"testing"
)

func TestIndexedMapKeys(t *testing.T) {
	m := IndexedMapT[string]{}
	a := m.Insert("a")
	b := m.Insert("b")
	if a == b {
		t.Errorf("keys should be distinct")
	}
	if m.At(a) != "a" || m.At(b) != "b" {
		t.Errorf("lookup returned the wrong values")
	}
	if m.Len() != 2 {
		t.Errorf("want 2 entries, got %d", m.Len())
	}
}

func TestIndexedMapErase(t *testing.T) {
	m := IndexedMapT[string]{}
	a := m.Insert("a")
	b := m.Insert("b")
	m.Erase(a)
	if m.Contains(a) {
		t.Errorf("erased key should be gone")
	}
	if !m.Contains(b) {
		t.Errorf("other keys should survive an erase")
	}
	// keys are not reused
	c := m.Insert("c")
	if c == a {
		t.Errorf("an erased key should not come back")
	}
}

func TestIndexedMapExtractAll(t *testing.T) {
	m := IndexedMapT[string]{}
	m.Insert("a")
	b := m.Insert("b")
	m.Insert("c")
	m.Erase(b)
	if got := m.ExtractAll(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("extract should return survivors in key order, got %v", got)
	}
	if m.Len() != 0 {
		t.Errorf("extract should empty the map")
	}
}

func TestIndexedMapMissingKey(t *testing.T) {
	m := IndexedMapT[string]{}
	defer func() {
		if recover() == nil {
			t.Errorf("looking up a missing key should panic")
		}
	}()
	m.At(3)
}
