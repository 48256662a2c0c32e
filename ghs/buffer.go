// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// buffer.go - the per-node deferral buffer.
//
// Messages that arrive before the node can consume them wait here in arrival
// order. Every iterate/match/remove sequence runs under the buffer's own lock.
// M is the engine's message type; floodmax buffers its own messages here too.

package ghs

import "sync"

// Buffer holds deferred messages in arrival order.
type Buffer[M any] struct {
	mu    sync.Mutex
	items []M
}

// NewBuffer returns an empty Buffer.
func NewBuffer[M any]() *Buffer[M] { return &Buffer[M]{} }

// Add appends m.
func (b *Buffer[M]) Add(m M) {
	b.mu.Lock()
	b.items = append(b.items, m)
	b.mu.Unlock()
}

// TakeFirst removes and returns the earliest message satisfying match.
// Only that one entry is removed.
func (b *Buffer[M]) TakeFirst(match func(M) bool) (M, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, m := range b.items {
		if match(m) {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return m, true
		}
	}
	var zero M

	return zero, false
}

// Drop removes every message satisfying match and returns how many went.
func (b *Buffer[M]) Drop(match func(M) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.items[:0]
	for _, m := range b.items {
		if !match(m) {
			kept = append(kept, m)
		}
	}
	n := len(b.items) - len(kept)
	var zero M
	for i := len(kept); i < len(b.items); i++ {
		b.items[i] = zero // release payloads
	}
	b.items = kept

	return n
}

// Len returns the number of buffered messages.
func (b *Buffer[M]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

// Snapshot returns a copy of the buffered messages in order.
func (b *Buffer[M]) Snapshot() []M {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]M(nil), b.items...)
}
