// SPDX-License-Identifier: MIT
// Package prim_kruskal provides an implementation of Prim's Minimum Spanning Tree algorithm.
package prim_kruskal

import (
	"container/heap"
	"fmt"

	"github.com/katalvlaran/synchghs/core"
)

// Prim computes the MST of graph by growing outwards from root using a min-heap.
//
// Error Conditions:
//   - ErrInvalidGraph        : graph is nil.
//   - core.ErrVertexNotFound : root is not a vertex.
//   - ErrDisconnected        : |V| == 0, or the graph is not connected.
//
// Complexity: O(E log V) time, O(V + E) memory.
func Prim(graph *core.Graph, root int) ([]core.Edge, int64, error) {
	if graph == nil {
		return nil, 0, ErrInvalidGraph
	}
	n := graph.VertexCount()
	if n == 0 {
		return nil, 0, ErrDisconnected
	}
	if !graph.HasVertex(root) {
		return nil, 0, fmt.Errorf("Prim: root %d: %w", root, core.ErrVertexNotFound)
	}
	if n == 1 {
		return []core.Edge{}, 0, nil
	}

	visited := make(map[int]bool, n)
	mst := make([]core.Edge, 0, n-1)
	var total int64
	pq := &edgePQ{}

	// visit marks v and pushes every edge leading out of the tree.
	visit := func(v int) error {
		visited[v] = true
		nbs, err := graph.Neighbors(v)
		if err != nil {
			return err
		}
		for _, e := range nbs {
			if !visited[e.Other(v)] {
				heap.Push(pq, e)
			}
		}

		return nil
	}

	if err := visit(root); err != nil {
		return nil, 0, err
	}
	for pq.Len() > 0 && len(mst) < n-1 {
		e := heap.Pop(pq).(core.Edge)
		var next int
		switch {
		case !visited[e.Low]:
			next = e.Low
		case !visited[e.High]:
			next = e.High
		default:
			continue // both ends already in the tree
		}
		mst = append(mst, e)
		total += e.Weight
		if err := visit(next); err != nil {
			return nil, 0, err
		}
	}
	if len(mst) < n-1 {
		return nil, 0, ErrDisconnected
	}
	sortEdges(mst)

	return mst, total, nil
}

// edgePQ implements heap.Interface for a min-heap of core.Edge under the
// core.Edge total order.
type edgePQ []core.Edge

func (pq edgePQ) Len() int           { return len(pq) }
func (pq edgePQ) Less(i, j int) bool { return pq[i].Less(pq[j]) }
func (pq edgePQ) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

// Push appends x, which must be a core.Edge. Called by heap.Push.
func (pq *edgePQ) Push(x interface{}) { *pq = append(*pq, x.(core.Edge)) }

// Pop removes the last element. Called by heap.Pop.
func (pq *edgePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	e := old[n-1]
	*pq = old[:n-1]

	return e
}
