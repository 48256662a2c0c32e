// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// candidates.go - the MWOE selector's weight-ordered set of incident edges
// that are not yet tree edges.
//
// Complexity: Push/Remove O(log n), Min O(1).

package ghs

import (
	"container/heap"

	"github.com/katalvlaran/synchghs/core"
)

// Candidates is a min-set of edges under the core.Edge order.
// It is not safe for concurrent use; the owning Node serializes access.
type Candidates struct {
	h   edgeHeap
	pos map[core.Edge]int // index of each edge in h
}

// NewCandidates returns a set holding edges (duplicates collapse).
func NewCandidates(edges []core.Edge) *Candidates {
	c := &Candidates{pos: make(map[core.Edge]int, len(edges))}
	c.h.pos = c.pos
	for _, e := range edges {
		c.Push(e)
	}

	return c
}

// Push adds e; adding a present edge is a no-op.
func (c *Candidates) Push(e core.Edge) {
	if _, ok := c.pos[e]; ok {
		return
	}
	heap.Push(&c.h, e)
}

// Min returns the lightest edge without removing it.
func (c *Candidates) Min() (core.Edge, bool) {
	if len(c.h.items) == 0 {
		return core.Edge{}, false
	}

	return c.h.items[0], true
}

// Remove deletes e and reports whether it was present.
func (c *Candidates) Remove(e core.Edge) bool {
	i, ok := c.pos[e]
	if !ok {
		return false
	}
	heap.Remove(&c.h, i)

	return true
}

// Len returns the number of candidates.
func (c *Candidates) Len() int { return len(c.h.items) }

// edgeHeap implements heap.Interface and keeps pos in sync with item indices.
type edgeHeap struct {
	items []core.Edge
	pos   map[core.Edge]int
}

func (h edgeHeap) Len() int           { return len(h.items) }
func (h edgeHeap) Less(i, j int) bool { return h.items[i].Less(h.items[j]) }

func (h edgeHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i]] = i
	h.pos[h.items[j]] = j
}

func (h *edgeHeap) Push(x interface{}) {
	e := x.(core.Edge)
	h.pos[e] = len(h.items)
	h.items = append(h.items, e)
}

func (h *edgeHeap) Pop() interface{} {
	n := len(h.items)
	e := h.items[n-1]
	h.items = h.items[:n-1]
	delete(h.pos, e)

	return e
}
