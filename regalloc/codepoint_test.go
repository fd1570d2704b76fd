// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

package regalloc

import (
	"testing"
)

func TestCodePointHalves(t *testing.T) {
	if CodePointT(6).Early() != 6 || CodePointT(7).Early() != 6 {
		t.Errorf("early half of instruction 3 should be 6")
	}
	if CodePointT(6).Late() != 7 || CodePointT(7).Late() != 7 {
		t.Errorf("late half of instruction 3 should be 7")
	}
}

func TestCodePointStepping(t *testing.T) {
	if CodePointT(6).NextInst() != 8 || CodePointT(7).NextInst() != 8 {
		t.Errorf("next instruction from 6 and 7 should start at 8")
	}
	if CodePointT(6).PrevInst() != 4 || CodePointT(7).PrevInst() != 4 {
		t.Errorf("previous instruction from 6 and 7 should start at 4")
	}
	if CodePointT(6).prevPoint() != 5 {
		t.Errorf("point before 6 should be 5, the previous late half")
	}
	if CodePointT(7).prevPoint() != 6 {
		t.Errorf("point before 7 should be 6, the same early half")
	}
}

func TestCodePointMax(t *testing.T) {
	if CodePointT(3).Max(5) != 5 || CodePointT(5).Max(3) != 5 {
		t.Errorf("max of 3 and 5 should be 5")
	}
}

func TestIntervalOverlap(t *testing.T) {
	tests := []struct {
		a, b    IntervalT
		overlap bool
	}{
		{IntervalT{0, 3}, IntervalT{4, 7}, false},
		{IntervalT{0, 3}, IntervalT{3, 7}, true},
		{IntervalT{0, 9}, IntervalT{4, 5}, true},
		{IntervalT{4, 5}, IntervalT{0, 9}, true},
		{IntervalT{0, 0}, IntervalT{0, 0}, true},
		{IntervalT{5, 9}, IntervalT{0, 4}, false},
	}
	for _, test := range tests {
		if test.a.OverlapsWith(test.b) != test.overlap {
			t.Errorf("%s overlaps %s: want %v", test.a, test.b, test.overlap)
		}
	}
}

func TestIntervalFullyWithin(t *testing.T) {
	if !(IntervalT{4, 5}).FullyWithin(IntervalT{0, 9}) {
		t.Errorf("[4,5] is fully within [0,9]")
	}
	if (IntervalT{0, 9}).FullyWithin(IntervalT{4, 5}) {
		t.Errorf("[0,9] is not fully within [4,5]")
	}
	if !(IntervalT{0, 9}).FullyWithin(IntervalT{0, 9}) {
		t.Errorf("an interval is fully within itself")
	}
}

func TestIntervalMinimal(t *testing.T) {
	if !(IntervalT{4, 6}).IsMinimal() {
		t.Errorf("[4,6] spans one instruction and is minimal")
	}
	if (IntervalT{4, 5}).IsMinimal() || (IntervalT{4, 8}).IsMinimal() {
		t.Errorf("[4,5] and [4,8] are not minimal")
	}
}

func TestIntervalOrder(t *testing.T) {
	if !(IntervalT{0, 3}).before(IntervalT{2, 3}) {
		t.Errorf("[0,3] sorts before [2,3]")
	}
	if !(IntervalT{2, 3}).before(IntervalT{2, 5}) {
		t.Errorf("[2,3] sorts before [2,5]")
	}
	if (IntervalT{2, 5}).before(IntervalT{2, 5}) {
		t.Errorf("an interval does not sort before itself")
	}
}
