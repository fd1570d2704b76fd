// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// Live ranges and live bundles.  A live range is one contiguous
// stretch over which a virtual register holds a value.  A bundle is
// a sorted set of non-overlapping ranges that share one allocation
// decision.  While the allocator runs, ranges name their bundle by
// its key in the bundle table rather than by pointer, so a bundle
// replaced in a split leaves its old key dangling harmlessly.

package regalloc

import (
	"fmt"
	"slices"
)

type LiveRangeT struct {
	Start     CodePointT
	End       CodePointT
	Uses      []CodePointT
	SpillCost int
	Vreg      VirtualRegT

	parent   uint32       // key in the allocator's bundle table
	owner    *LiveBundleT // set when the run's results are assembled
	assigned bool         // currently entered in a register index
}

func MakeLiveRange(vreg VirtualRegT,
	start CodePointT,
	end CodePointT,
	uses []CodePointT,
	spillCost int) *LiveRangeT {

	if end < start {
		panic(fmt.Sprintf("live range for v%d ends at %d, before its start %d",
			vreg.Id, end, start))
	}
	if spillCost < 0 {
		panic(fmt.Sprintf("live range for v%d has negative spill cost %d",
			vreg.Id, spillCost))
	}
	for i, use := range uses {
		if use < start || end < use {
			panic(fmt.Sprintf("v%d has a use at %d outside [%d,%d]",
				vreg.Id, use, start, end))
		}
		if 0 < i && use < uses[i-1] {
			panic(fmt.Sprintf("v%d has uses out of order", vreg.Id))
		}
	}
	return &LiveRangeT{Start: start, End: end, Uses: uses,
		SpillCost: spillCost, Vreg: vreg}
}

func (rng *LiveRangeT) LiveInterval() IntervalT {
	return IntervalT{rng.Start, rng.End}
}

func (rng *LiveRangeT) isMinimal() bool {
	return rng.LiveInterval().IsMinimal()
}

// The final allocation, readable once Run has returned.
func (rng *LiveRangeT) Allocation() AllocationT {
	if rng.owner == nil {
		return AllocNull()
	}
	return rng.owner.allocation
}

// The bundle the range ended up in, readable once Run has returned.
func (rng *LiveRangeT) Parent() *LiveBundleT {
	return rng.owner
}

func (rng *LiveRangeT) clone() *LiveRangeT {
	return &LiveRangeT{Start: rng.Start, End: rng.End,
		Uses: slices.Clone(rng.Uses), SpillCost: rng.SpillCost,
		Vreg: rng.Vreg, parent: rng.parent}
}

//----------------------------------------------------------------

type LiveBundleT struct {
	// ranges are sorted by start and pairwise non-overlapping
	ranges     []*LiveRangeT
	allocation AllocationT
}

func MakeLiveBundle(ranges ...*LiveRangeT) *LiveBundleT {
	if len(ranges) == 0 {
		panic("a live bundle needs at least one range")
	}
	for i, rng := range ranges[:len(ranges)-1] {
		next := ranges[i+1]
		if next.Start <= rng.End {
			panic(fmt.Sprintf("bundle ranges [%d,%d] and [%d,%d] are out of order or overlap",
				rng.Start, rng.End, next.Start, next.End))
		}
	}
	return &LiveBundleT{ranges: ranges, allocation: AllocNull()}
}

func (bundle *LiveBundleT) Ranges() []*LiveRangeT {
	return bundle.ranges
}

func (bundle *LiveBundleT) Allocation() AllocationT {
	return bundle.allocation
}

func (bundle *LiveBundleT) setAllocation(alloc AllocationT) {
	bundle.allocation = alloc
}

func (bundle *LiveBundleT) Start() CodePointT {
	return bundle.ranges[0].Start
}

func (bundle *LiveBundleT) End() CodePointT {
	return bundle.ranges[len(bundle.ranges)-1].End
}

func (bundle *LiveBundleT) NumRanges() int {
	return len(bundle.ranges)
}

func (bundle *LiveBundleT) firstRange() *LiveRangeT {
	return bundle.ranges[0]
}

func (bundle *LiveBundleT) lastRange() *LiveRangeT {
	return bundle.ranges[len(bundle.ranges)-1]
}

func (bundle *LiveBundleT) isMinimal() bool {
	return len(bundle.ranges) == 1 && bundle.ranges[0].isMinimal()
}

// A copy of the bundle restricted to 'interval', or nil if nothing
// is left.  Ranges fully inside the interval are kept as is; ranges
// crossing an endpoint are cloned, clamped, and have the uses
// outside the clamp dropped.  Going over the ranges sequentially is
// as fast as anything for the bundle sizes that show up here.

func (bundle *LiveBundleT) truncated(interval IntervalT) *LiveBundleT {
	newRanges := []*LiveRangeT{}
	for _, rng := range bundle.ranges {
		liveIn := rng.LiveInterval()
		if !interval.OverlapsWith(liveIn) {
			continue
		}
		if liveIn.FullyWithin(interval) {
			newRanges = append(newRanges, rng)
			continue
		}
		newStart := rng.Start.Max(interval.Low)
		newEnd := rng.End
		if interval.High < newEnd {
			newEnd = interval.High
		}
		truncatedRange := rng.clone()
		truncatedRange.Start = newStart
		truncatedRange.End = newEnd
		truncatedRange.Uses = slices.DeleteFunc(truncatedRange.Uses,
			func(use CodePointT) bool { return use < newStart || newEnd < use })
		newRanges = append(newRanges, truncatedRange)
	}
	if len(newRanges) == 0 {
		return nil
	}
	return &LiveBundleT{ranges: newRanges, allocation: bundle.allocation}
}
