// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// Code points number the positions in a routine.  Each instruction
// slot gets two points: an even 'early' half where inputs are read
// and an odd 'late' half where outputs are written.

package regalloc

import (
	"fmt"
)

type CodePointT uint32

// Marks 'no such point'.
const noCodePoint = CodePointT(^uint32(0))

func (point CodePointT) Early() CodePointT {
	return point &^ 1
}

func (point CodePointT) Late() CodePointT {
	return point | 1
}

func (point CodePointT) NextInst() CodePointT {
	return point.Early() + 2
}

func (point CodePointT) PrevInst() CodePointT {
	return point.Early() - 2
}

func (point CodePointT) Max(other CodePointT) CodePointT {
	if point < other {
		return other
	}
	return point
}

// The last code point before 'point'.  For an early point this is
// the previous instruction's late half, for a late point it is the
// same instruction's early half.  Cutting a bundle any later would
// let a use at 'point' land on both sides of the cut.
func (point CodePointT) prevPoint() CodePointT {
	return point - 1
}

//----------------------------------------------------------------

// An interval of code points, closed on both ends.

type IntervalT struct {
	Low  CodePointT
	High CodePointT
}

// A minimal interval spans one instruction.
const minimalInterval = 2

func (interval IntervalT) OverlapsWith(other IntervalT) bool {
	return interval.Low <= other.High && interval.High >= other.Low
}

func (interval IntervalT) IsMinimal() bool {
	return interval.High-interval.Low == minimalInterval
}

func (interval IntervalT) FullyWithin(other IntervalT) bool {
	return other.Low <= interval.Low && other.High >= interval.High
}

func (interval IntervalT) String() string {
	return fmt.Sprintf("[%d,%d]", interval.Low, interval.High)
}

// The interval map's key order: by low endpoint, then by high.
func (interval IntervalT) before(other IntervalT) bool {
	if interval.Low != other.Low {
		return interval.Low < other.Low
	}
	return interval.High < other.High
}
