// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// Register allocation.
// This is a second-chance linear-scan allocator after Cranelift's.
//   https://cfallin.org/blog/2022/06/09/cranelift-regalloc2/
// Live ranges arrive grouped into bundles that share an allocation
// decision.  Each range goes through the pending queue, where it
// either gets a register, evicts cheaper holders to take theirs, or
// splits its bundle and tries again in pieces.  Ranges that can do
// none of those wait on the second chance queue and spill if a
// register never turns up.

package regalloc

import (
	"fmt"
	"sort"

	"golang.org/x/tools/container/intsets"

	"github.com/s48/backend/util"
)

type AllocatorT struct {
	isa          *TargetIsaT
	indexes      [RegClassCount]intervalMapT[*LiveRangeT]
	pending      *util.PriorityQueueT[queueEntryT]
	secondChance *util.PriorityQueueT[queueEntryT]
	bundles      util.IndexedMapT[*LiveBundleT]
	seq          uint64
	tr           traceT
}

// Queue entries carry a sequence number so that equal spill costs
// dequeue first-in first-out.

type queueEntryT struct {
	rng *LiveRangeT
	seq uint64
}

func queueBefore(x queueEntryT, y queueEntryT) bool {
	if x.rng.SpillCost != y.rng.SpillCost {
		return y.rng.SpillCost < x.rng.SpillCost
	}
	return x.seq < y.seq
}

func MakeAllocator(isa *TargetIsaT) *AllocatorT {
	alloc := &AllocatorT{
		isa:          isa,
		pending:      util.MakePriorityQueue(queueBefore),
		secondChance: util.MakePriorityQueue(queueBefore),
		tr:           makeTrace(),
	}
	for i := range alloc.indexes {
		alloc.indexes[i] = makeIntervalMap[*LiveRangeT]()
	}
	return alloc
}

func (alloc *AllocatorT) push(queue *util.PriorityQueueT[queueEntryT], rng *LiveRangeT) {
	queue.Enqueue(queueEntryT{rng, alloc.seq})
	alloc.seq += 1
}

// What happened to a range on one trip through runOnce.

type runOutcomeT int

const (
	runAssigned runOutcomeT = iota
	runSplit
	runFailed
)

// Seeds the queues and runs both phases to a fixed point.  The
// pending queue always drains first: a split made while draining the
// second chance queue puts new ranges back on pending, and they get
// a first-chance attempt before anything else spills.

func (alloc *AllocatorT) Run(bundles []*LiveBundleT) OutputT {
	for _, bundle := range bundles {
		id := alloc.bundles.Insert(bundle)
		for _, rng := range bundle.ranges {
			rng.parent = id
			alloc.push(alloc.pending, rng)
		}
	}

	for {
		if !alloc.pending.Empty() {
			rng := alloc.pending.Dequeue().rng
			if alloc.isStale(rng) {
				continue
			}
			reg, outcome := alloc.runOnce(rng)
			switch outcome {
			case runAssigned:
				alloc.commit(rng, reg)
			case runSplit:
				// the split requeued whatever needs another look
			case runFailed:
				alloc.push(alloc.secondChance, rng)
			}
		} else if !alloc.secondChance.Empty() {
			rng := alloc.secondChance.Dequeue().rng
			if alloc.isStale(rng) {
				continue
			}
			reg, outcome := alloc.runOnce(rng)
			switch outcome {
			case runAssigned:
				alloc.commit(rng, reg)
			case runSplit:
				// as above
			case runFailed:
				bundle := alloc.bundles.At(rng.parent)
				bundle.setAllocation(AllocSpillUnassigned())
				alloc.tr.Printw("spill", "vreg", rng.Vreg.Id,
					"interval", rng.LiveInterval().String())
			}
		} else {
			break
		}
	}

	return alloc.assemble()
}

// A queue can hold a range twice, and a split can orphan a range
// that is still queued.  An orphan's bundle key is gone from the
// table; a duplicate's first copy has already been entered in an
// index.  Either way the entry is ignored.

func (alloc *AllocatorT) isStale(rng *LiveRangeT) bool {
	return !alloc.bundles.Contains(rng.parent) || rng.assigned
}

func (alloc *AllocatorT) commit(rng *LiveRangeT, reg RegisterT) {
	bundle := alloc.bundles.At(rng.parent)
	bundle.setAllocation(AllocReg(reg))
	if !alloc.indexes[reg.Class].insert(rng.LiveInterval(), reg.Encoding, rng) {
		panic(ErrDuplicateRange)
	}
	rng.assigned = true
	alloc.tr.Printw("assign", "vreg", rng.Vreg.Id,
		"interval", rng.LiveInterval().String(), "reg", reg.String())
}

// One allocation attempt.  First try to take a register, evicting
// cheaper holders if that pays.  Failing that, split the bundle so
// the pieces can try separately.

func (alloc *AllocatorT) runOnce(rng *LiveRangeT) (RegisterT, runOutcomeT) {
	class := rng.Vreg.Type.RegClass()
	interferences := alloc.indexes[class].overlapping(rng.LiveInterval())

	if reg, ok := alloc.tryAssignMightEvict(rng, class, interferences); ok {
		return reg, runAssigned
	}

	at, found := findSplitSpot(rng, interferences)
	if !found || !alloc.trySplit(rng, at) {
		return RegisterT{}, runFailed
	}
	return RegisterT{}, runSplit
}

// The first register in the target's preference order that no
// register-holding interference is using.

func (alloc *AllocatorT) getUnusedPreg(class RegClassT,
	interferences []*LiveRangeT) (RegisterT, bool) {

	registers := alloc.isa.Registers[class]
	if len(registers) == 0 {
		panic(fmt.Sprintf("target has no %s registers", class))
	}
	var used intsets.Sparse
	for _, interference := range interferences {
		allocation := alloc.bundles.At(interference.parent).allocation
		if allocation.IsReg() {
			used.Insert(int(allocation.Reg().Encoding))
		}
	}
	for _, reg := range registers {
		if !used.Has(int(reg.Encoding)) {
			return reg, true
		}
	}
	return RegisterT{}, false
}

// The cost of freeing each occupied register: the total spill cost
// of the interferences holding it.

func (alloc *AllocatorT) evictionCosts(interferences []*LiveRangeT) map[RegisterT]int {
	costs := map[RegisterT]int{}
	for _, interference := range interferences {
		allocation := alloc.bundles.At(interference.parent).allocation
		if allocation.IsReg() {
			costs[allocation.Reg()] += interference.SpillCost
		}
	}
	return costs
}

func (alloc *AllocatorT) tryAssignMightEvict(rng *LiveRangeT,
	class RegClassT,
	interferences []*LiveRangeT) (RegisterT, bool) {

	if reg, ok := alloc.getUnusedPreg(class, interferences); ok {
		return reg, true
	}

	costs := alloc.evictionCosts(interferences)
	if len(costs) == 0 {
		return RegisterT{}, false
	}
	// Scan registers in encoding order so cost ties always go to the
	// lowest-encoded register.
	regs := make([]RegisterT, 0, len(costs))
	for reg := range costs {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i int, j int) bool { return regs[i].before(regs[j]) })
	best := regs[0]
	for _, reg := range regs[1:] {
		if costs[reg] < costs[best] {
			best = reg
		}
	}
	if costs[best] < rng.SpillCost {
		alloc.evictFor(best, interferences)
		return best, true
	}
	return RegisterT{}, false
}

// Takes every bundle holding 'reg' among the interferences back to
// an unallocated state.  All of each bundle's index entries come
// out, not just the interfering ones; leaving a sibling entry behind
// would have it collide with itself when the bundle's ranges come
// back through the queue.

func (alloc *AllocatorT) evictFor(reg RegisterT, interferences []*LiveRangeT) {
	evicted := util.NewSet[uint32]()
	for _, interference := range interferences {
		bundle := alloc.bundles.At(interference.parent)
		if bundle.allocation.IsReg() && bundle.allocation.Reg() == reg {
			evicted.Add(interference.parent)
		}
	}
	ids := evicted.Members()
	sort.Slice(ids, func(i int, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		bundle := alloc.bundles.At(id)
		for _, rng := range bundle.ranges {
			if rng.assigned {
				alloc.indexes[reg.Class].remove(rng.LiveInterval(), reg.Encoding)
				rng.assigned = false
			}
			alloc.push(alloc.secondChance, rng)
		}
		bundle.setAllocation(AllocNull())
		alloc.tr.Printw("evict", "reg", reg.String(), "bundle", id)
	}
}

// Where to split 'rng's bundle: the earliest point where an
// interference and the range are both live, when that is past the
// range's start.  When the interference begins at or before the
// start there is no later point inside the contested stretch, so
// fall back to the first use, or to the next instruction when the
// first use would not separate anything.

func findSplitSpot(rng *LiveRangeT, interferences []*LiveRangeT) (CodePointT, bool) {
	spot := noCodePoint
	for _, interference := range interferences {
		if interference.Start < spot {
			spot = interference.Start.Max(rng.Start)
		}
	}
	if spot == noCodePoint {
		return 0, false
	}
	if spot != rng.Start {
		return spot, true
	}
	if len(rng.Uses) == 0 || rng.Uses[0] == rng.End || rng.Uses[0] == rng.Start {
		at := rng.Start.NextInst()
		if rng.End < at {
			// Do not reach past the range: a cut beyond End+1 could
			// land inside an adjacent range in the same bundle and
			// needlessly clone it.
			at = rng.End + 1
		}
		return at, true
	}
	return rng.Uses[0], true
}

// Splits 'rng's bundle in two at 'at'.  The left child gets
// everything before 'at', the right child everything from 'at' on.
// Reports failure, with no mutation, when the bundle is minimal or
// either side would be empty.

func (alloc *AllocatorT) trySplit(rng *LiveRangeT, at CodePointT) bool {
	id := rng.parent
	bundle := alloc.bundles.At(id)
	if bundle.isMinimal() {
		return false
	}

	left := bundle.truncated(IntervalT{bundle.Start(), at.prevPoint()})
	right := bundle.truncated(IntervalT{at, bundle.End()})
	if left == nil || right == nil {
		return false
	}

	alloc.bundles.Erase(id)
	leftId := alloc.bundles.Insert(left)
	for _, r := range left.ranges {
		r.parent = leftId
	}
	rightId := alloc.bundles.Insert(right)
	for _, r := range right.ranges {
		r.parent = rightId
	}

	if left.NumRanges()+right.NumRanges() != bundle.NumRanges() {
		// rng crossed the cut; its two new halves need their own
		// turns through the queue.
		alloc.push(alloc.pending, left.lastRange())
		alloc.push(alloc.pending, right.firstRange())
	} else {
		// The cut fell in a gap and rng survived whole inside one
		// child.  Requeue it or it would never get an allocation.
		alloc.push(alloc.pending, rng)
	}
	alloc.tr.Printw("split", "vreg", rng.Vreg.Id, "at", uint32(at),
		"left", left.NumRanges(), "right", right.NumRanges())
	return true
}
