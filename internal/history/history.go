// Package history provides a generic bounded newest-first list.
package history

import (
	"sync"
)

// History is a thread-safe list capped at a fixed number of entries.
// New entries are inserted at the head; once the cap is exceeded the oldest
// entry is dropped.
type History[T any] struct {
	mu    sync.RWMutex
	max   int
	items []T
}

// New creates an empty history bounded to max entries.
func New[T any](max int) *History[T] {
	return &History[T]{
		max:   max,
		items: make([]T, 0, max),
	}
}

// Push inserts an item at the head, dropping the oldest entry if the bound
// would be exceeded.
func (h *History[T]) Push(item T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append([]T{item}, h.items...)
	if len(h.items) > h.max {
		h.items = h.items[:h.max]
	}
}

// Items returns a copy of the entries, newest first.
func (h *History[T]) Items() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Max returns the configured bound.
func (h *History[T]) Max() int {
	return h.max
}

// Clear removes all entries.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = h.items[:0]
}

// Replace swaps the contents for the given entries, truncated to the bound.
// The slice is expected newest-first.
func (h *History[T]) Replace(items []T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(items) > h.max {
		items = items[:h.max]
	}
	h.items = append(h.items[:0], items...)
}
