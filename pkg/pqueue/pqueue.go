// Package pqueue provides a generic binary min-heap priority queue.
package pqueue

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/ajitpratap0/freelist/pkg/errors"
)

// ErrEmpty is returned by Pop and Peek on an empty queue.
var ErrEmpty = errors.New(errors.ErrorTypeValidation, "queue contains no elements")

// MinQueue is a min-heap ordered by a less function: Pop always returns the
// smallest element. It is not safe for concurrent use.
type MinQueue[T any] struct {
	heap []T
	less func(a, b T) bool
}

// New creates an empty queue ordered by less.
func New[T any](less func(a, b T) bool) *MinQueue[T] {
	return &MinQueue[T]{less: less}
}

// NewOrdered creates an empty queue for an ordered type using <.
func NewOrdered[T cmp.Ordered]() *MinQueue[T] {
	return New(cmp.Less[T])
}

// Len returns the number of queued elements.
func (q *MinQueue[T]) Len() int {
	return len(q.heap)
}

// Any reports whether the queue holds at least one element.
func (q *MinQueue[T]) Any() bool {
	return len(q.heap) > 0
}

// Push adds item and restores the heap order.
func (q *MinQueue[T]) Push(item T) {
	q.heap = append(q.heap, item)
	q.swim(len(q.heap) - 1)
}

// PushAll pushes every item in order.
func (q *MinQueue[T]) PushAll(items []T) {
	for _, item := range items {
		q.Push(item)
	}
}

// Peek returns the smallest element without removing it.
func (q *MinQueue[T]) Peek() (T, error) {
	if len(q.heap) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return q.heap[0], nil
}

// Pop removes and returns the smallest element.
func (q *MinQueue[T]) Pop() (T, error) {
	if len(q.heap) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	item := q.heap[0]

	last := len(q.heap) - 1
	q.swap(0, last)
	var zero T
	q.heap[last] = zero
	q.heap = q.heap[:last]
	q.sink(0)

	return item, nil
}

// String renders the heap array, comma separated.
func (q *MinQueue[T]) String() string {
	parts := make([]string, len(q.heap))
	for i, item := range q.heap {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, ", ")
}

// swim moves the item at i up until its parent is not greater.
func (q *MinQueue[T]) swim(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.heap[i], q.heap[parent]) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

// sink moves the item at i down until neither child is smaller.
func (q *MinQueue[T]) sink(i int) {
	last := len(q.heap) - 1
	for {
		child := 2*i + 1
		if child > last {
			return
		}
		if child < last && q.less(q.heap[child+1], q.heap[child]) {
			child++
		}
		if !q.less(q.heap[child], q.heap[i]) {
			return
		}
		q.swap(i, child)
		i = child
	}
}

func (q *MinQueue[T]) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
}
