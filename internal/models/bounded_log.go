package models

import "sync"

// BoundedLog is an append-only list capped at a fixed length. Appending past
// the cap evicts the oldest entries first.
type BoundedLog[T any] struct {
	mu      sync.RWMutex
	entries []T
	limit   int
}

func NewBoundedLog[T any](limit int, initial []T) *BoundedLog[T] {
	if limit <= 0 {
		limit = 1
	}
	l := &BoundedLog[T]{limit: limit}
	l.entries = truncate(append([]T(nil), initial...), limit)
	return l
}

func (l *BoundedLog[T]) Append(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = truncate(append(l.entries, items...), l.limit)
}

// Entries returns a copy, oldest first.
func (l *BoundedLog[T]) Entries() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *BoundedLog[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func truncate[T any](entries []T, limit int) []T {
	if len(entries) <= limit {
		return entries
	}
	// fresh backing array so the evicted prefix can be collected
	out := make([]T, limit)
	copy(out, entries[len(entries)-limit:])
	return out
}
