// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// tree.go - the spanning tree model: committed tree edges and neighbors plus
// the edges agreed during the current level, which only join the tree at
// Commit so in-flight broadcasts keep their link set.

package ghs

import (
	"sort"

	"github.com/katalvlaran/synchghs/core"
)

// Tree is a node's incident share of the spanning tree. It grows monotonically.
// It is not safe for concurrent use; the owning Node serializes access.
type Tree struct {
	edges  map[int]core.Edge // committed: neighbor -> edge
	staged map[int]core.Edge // agreed this level: neighbor -> edge
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{edges: make(map[int]core.Edge), staged: make(map[int]core.Edge)}
}

// Stage records e toward neighbor nb for the next level. It reports false
// if nb is already committed or staged.
func (t *Tree) Stage(nb int, e core.Edge) bool {
	if _, ok := t.edges[nb]; ok {
		return false
	}
	if _, ok := t.staged[nb]; ok {
		return false
	}
	t.staged[nb] = e

	return true
}

// Commit folds the staged edges into the tree and returns them sorted.
func (t *Tree) Commit() []core.Edge {
	added := make([]core.Edge, 0, len(t.staged))
	for nb, e := range t.staged {
		t.edges[nb] = e
		added = append(added, e)
	}
	t.staged = make(map[int]core.Edge)
	sortEdges(added)

	return added
}

// HasNeighbor reports whether nb is a committed tree neighbor.
func (t *Tree) HasNeighbor(nb int) bool {
	_, ok := t.edges[nb]
	return ok
}

// Neighbors returns committed tree neighbors in ascending order.
func (t *Tree) Neighbors() []int {
	ids := make([]int, 0, len(t.edges))
	for nb := range t.edges {
		ids = append(ids, nb)
	}
	sort.Ints(ids)

	return ids
}

// Edges returns committed tree edges in core.Edge order.
func (t *Tree) Edges() []core.Edge {
	out := make([]core.Edge, 0, len(t.edges))
	for _, e := range t.edges {
		out = append(out, e)
	}
	sortEdges(out)

	return out
}

// Len returns the number of committed tree edges.
func (t *Tree) Len() int { return len(t.edges) }

func sortEdges(edges []core.Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
}
