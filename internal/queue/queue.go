// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package queue provides the unbounded multi-producer, single-consumer queue
// that carries commands from recorder handles to their worker.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Push after Close.
	ErrClosed = errors.New("queue is closed")

	// ErrFailed is returned by Push after Fail.
	ErrFailed = errors.New("queue consumer has failed")
)

// Unbounded is a FIFO queue without capacity limit.
// Push never blocks. Pop blocks until an item arrives or the queue is closed and empty.
// Any number of goroutines may Push; only one goroutine may Pop or TryPop.
type Unbounded[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool
	failed bool
	// ready holds at most one wakeup for the consumer.
	ready chan struct{}
}

// NewUnbounded creates an empty queue.
func NewUnbounded[T any]() *Unbounded[T] {
	return &Unbounded[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends v to the tail of the queue.
// Once Close has been called Push reports ErrClosed, even if the queue also failed.
func (q *Unbounded[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.failed {
		q.mu.Unlock()
		return ErrFailed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.wake()
	return nil
}

// Pop removes and returns the head of the queue, waiting for one if necessary.
// The second result is false once the queue is closed and drained, or failed.
func (q *Unbounded[T]) Pop() (T, bool) {
	for {
		v, ok, done := q.take()
		if ok || done {
			return v, ok
		}
		<-q.ready
	}
}

// TryPop removes and returns the head of the queue if one is immediately available.
func (q *Unbounded[T]) TryPop() (T, bool) {
	v, ok, _ := q.take()
	return v, ok
}

// take pops under the lock. done reports that no item will ever be available again.
func (q *Unbounded[T]) take() (v T, ok bool, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failed {
		return v, false, true
	}
	if q.head < len(q.items) {
		v = q.items[q.head]
		var zero T
		q.items[q.head] = zero
		q.head++
		// Reclaim the consumed prefix once it dominates the slice.
		if q.head == len(q.items) {
			q.items = q.items[:0]
			q.head = 0
		} else if q.head > 64 && q.head*2 > len(q.items) {
			n := copy(q.items, q.items[q.head:])
			clear(q.items[n:])
			q.items = q.items[:n]
			q.head = 0
		}
		return v, true, false
	}
	return v, false, q.closed
}

// Close stops accepting new items. Items already queued remain available to Pop.
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// Fail tears the queue down: pending items are discarded and further pushes are rejected.
// It returns the number of discarded items.
func (q *Unbounded[T]) Fail() int {
	q.mu.Lock()
	dropped := len(q.items) - q.head
	q.failed = true
	q.items = nil
	q.head = 0
	q.mu.Unlock()
	q.wake()
	return dropped
}

// Len returns the number of queued items.
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

func (q *Unbounded[T]) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
