// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// Based on the example in container/heap.

package util

import (
	"container/heap"
)

// Wrapper type to hide the sort and heap interface methods.  The
// 'before' function says which of two elements should be dequeued
// first.

type PriorityQueueT[T any] struct {
	queue innerQueueT[T]
}

func MakePriorityQueue[T any](before func(x T, y T) bool) *PriorityQueueT[T] {
	return &PriorityQueueT[T]{innerQueueT[T]{before: before}}
}

func (pq *PriorityQueueT[T]) Len() int {
	return len(pq.queue.elts)
}

func (pq *PriorityQueueT[T]) Empty() bool {
	return len(pq.queue.elts) == 0
}

func (pq *PriorityQueueT[T]) Enqueue(x T) {
	heap.Push(&pq.queue, x)
}

func (pq *PriorityQueueT[T]) Dequeue() T {
	return heap.Pop(&pq.queue).(T)
}

func (pq *PriorityQueueT[T]) Peek() T {
	if len(pq.queue.elts) == 0 {
		panic("peeking at an empty queue")
	}
	return pq.queue.elts[0]
}

// The actual priority queue.

type innerQueueT[T any] struct {
	elts   []T
	before func(x T, y T) bool
}

func (pq innerQueueT[T]) Len() int { return len(pq.elts) }

func (pq innerQueueT[T]) Less(i, j int) bool {
	return pq.before(pq.elts[i], pq.elts[j])
}

func (pq innerQueueT[T]) Swap(i, j int) {
	pq.elts[i], pq.elts[j] = pq.elts[j], pq.elts[i]
}

func (pq *innerQueueT[T]) Push(x any) {
	pq.elts = append(pq.elts, x.(T))
}

func (pq *innerQueueT[T]) Pop() any {
	elts := pq.elts
	newLength := len(elts) - 1
	item := elts[newLength]
	var defaultValue T
	elts[newLength] = defaultValue // reinitialize for safety
	pq.elts = elts[0:newLength]
	return item
}
