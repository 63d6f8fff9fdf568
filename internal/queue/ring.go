// Package queue provides a bounded generic ring buffer used as the operator
// command mailbox between the IPC boundary and the session cycle loop.
package queue

import "sync"

// Ring is a bounded FIFO. When full, Push drops the oldest element: the cycle
// loop wants the freshest operator commands, not a backlog.
type Ring[T any] struct {
	mu    sync.Mutex
	buf   []T
	head  int
	count int
}

// NewRing creates a ring with the given capacity, minimum 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, dropping the oldest element if the ring is full.
// It reports whether an element was dropped.
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := false
	if r.count == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		r.count--
		dropped = true
	}

	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++

	return dropped
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.count == 0 {
		return zero, false
	}

	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.count--

	return v, true
}

// Drain removes and returns every queued element, oldest first.
func (r *Ring[T]) Drain() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}

	out := make([]T, 0, r.count)
	for r.count > 0 {
		var zero T
		out = append(out, r.buf[r.head])
		r.buf[r.head] = zero
		r.head = (r.head + 1) % len(r.buf)
		r.count--
	}

	return out
}

// Len returns the number of queued elements.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// IsEmpty returns true if the ring is empty, false otherwise.
func (r *Ring[T]) IsEmpty() bool {
	return r.Len() == 0
}
