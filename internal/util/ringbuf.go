package util

import "sync"

// RingBuffer holds the last N values pushed into it, oldest first. It is safe
// for concurrent use.
type RingBuffer[T any] struct {
	mu   sync.RWMutex
	buf  []T
	next int
	full bool
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{buf: make([]T, capacity)}
}

func (r *RingBuffer[T]) Push(v T) {
	r.mu.Lock()
	r.buf[r.next] = v
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Snapshot copies every held value, oldest first.
func (r *RingBuffer[T]) Snapshot() []T {
	return r.Tail(0, nil)
}

// Tail returns up to n of the newest values accepted by keep, oldest first.
// n <= 0 means no limit and a nil keep accepts everything.
func (r *RingBuffer[T]) Tail(n int, keep func(T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.buf)
	}
	out := make([]T, 0, size)
	for i := size - 1; i >= 0; i-- {
		v := r.buf[(r.next-size+i+len(r.buf))%len(r.buf)]
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, v)
		if n > 0 && len(out) == n {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (r *RingBuffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.buf)
	}
	return r.next
}
