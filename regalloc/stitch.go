// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// The patch passes that run after the allocation loop: spilled
// bundles get stack offsets, and every point where a virtual
// register's allocation changes gets a stitch, a move that carries
// the value from the old location to the new one.

package regalloc

import (
	"fmt"
	"sort"
)

// A move reconciling two allocations of one virtual register.  The
// move happens at 'At', the instruction after the earlier range
// ends.

type StitchT struct {
	Vreg VirtualRegT
	From AllocationT
	To   AllocationT
	At   CodePointT
}

// What a run produces: every range left in the bundle table (input
// ranges, or the pieces that splits cut them into), carrying its
// final allocation through its bundle, plus the stitches.

type OutputT struct {
	Allocations []*LiveRangeT
	Stitches    []StitchT
}

// Drains the bundle table and produces the output.  Slots are
// assigned before stitches are discovered so that stitches into and
// out of spills name real offsets rather than the unassigned-slot
// marker.

func (alloc *AllocatorT) assemble() OutputT {
	bundles := alloc.bundles.ExtractAll()
	ranges := []*LiveRangeT{}
	for _, bundle := range bundles {
		for _, rng := range bundle.ranges {
			rng.owner = bundle
			ranges = append(ranges, rng)
		}
	}
	sort.Slice(ranges, func(i int, j int) bool {
		x := ranges[i]
		y := ranges[j]
		if x.Start != y.Start {
			return x.Start < y.Start
		}
		if x.End != y.End {
			return x.End < y.End
		}
		// Ranges of different virtual registers can share an
		// interval; order them by id to keep the walk deterministic.
		return x.Vreg.Id < y.Vreg.Id
	})
	alloc.assignSpillSlots(ranges)
	return OutputT{Allocations: ranges, Stitches: findStitches(ranges)}
}

// Walks the ranges in start order giving every spilled virtual
// register a stack offset.  All of a virtual register's spilled
// ranges share one slot, so a value spilled across a split never
// moves within the stack; concurrently spilled virtual registers
// get distinct slots.

func (alloc *AllocatorT) assignSpillSlots(ranges []*LiveRangeT) {
	slots := map[VirtualRegT]uint16{}
	offset := 0
	for _, rng := range ranges {
		if !rng.owner.allocation.IsSpill() {
			continue
		}
		slot, found := slots[rng.Vreg]
		if !found {
			align := alloc.isa.spillAlign(rng.Vreg.Type)
			if 1 < align {
				offset = (offset + align - 1) / align * align
			}
			if spillSlotNone <= offset {
				// 0xFFF marks an unassigned slot, so offsets stop
				// just short of it.
				panic(fmt.Sprintf("spill frame overflows 12 bits at offset %d", offset))
			}
			slot = uint16(offset)
			slots[rng.Vreg] = slot
			offset += rng.Vreg.Type.SizeBytes()
		}
		rng.owner.setAllocation(AllocSpill(slot))
	}
	if len(slots) != 0 {
		alloc.tr.Printw("spill slots", "count", len(slots), "bytes", offset)
	}
}

// Emits a stitch at every boundary between consecutive ranges of a
// virtual register whose allocations differ.  'ranges' must already
// be sorted by interval.

func findStitches(ranges []*LiveRangeT) []StitchT {
	stitches := []StitchT{}
	last := map[VirtualRegT]*LiveRangeT{}
	for _, rng := range ranges {
		if prev, found := last[rng.Vreg]; found {
			from := prev.owner.allocation
			to := rng.owner.allocation
			if from != to {
				stitches = append(stitches, StitchT{
					Vreg: rng.Vreg,
					From: from,
					To:   to,
					At:   prev.End.NextInst(),
				})
			}
		}
		last[rng.Vreg] = rng
	}
	return stitches
}
