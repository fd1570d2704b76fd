// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

package util

import (
	"testing"
)

func TestPriorityQueueOrder(t *testing.T) {
	pq := MakePriorityQueue(func(x int, y int) bool { return y < x })
	for _, x := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		pq.Enqueue(x)
	}
	if pq.Len() != 8 {
		t.Errorf("want 8 queued, got %d", pq.Len())
	}
	if pq.Peek() != 9 {
		t.Errorf("peek should see 9, got %d", pq.Peek())
	}
	previous := pq.Dequeue()
	for !pq.Empty() {
		next := pq.Dequeue()
		if previous < next {
			t.Fatalf("dequeued %d after %d", next, previous)
		}
		previous = next
	}
}

// With a secondary sequence key equal priorities come out first-in
// first-out.

type seqEntryT struct {
	priority int
	seq      int
}

func TestPriorityQueueStableTies(t *testing.T) {
	pq := MakePriorityQueue(func(x seqEntryT, y seqEntryT) bool {
		if x.priority != y.priority {
			return y.priority < x.priority
		}
		return x.seq < y.seq
	})
	for seq := 0; seq < 6; seq++ {
		pq.Enqueue(seqEntryT{7, seq})
	}
	for seq := 0; seq < 6; seq++ {
		if got := pq.Dequeue(); got.seq != seq {
			t.Fatalf("want seq %d, got %d", seq, got.seq)
		}
	}
}

func TestPriorityQueueEmptyPeek(t *testing.T) {
	pq := MakePriorityQueue(func(x int, y int) bool { return x < y })
	defer func() {
		if recover() == nil {
			t.Errorf("peeking at an empty queue should panic")
		}
	}()
	pq.Peek()
}
