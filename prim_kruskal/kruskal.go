// SPDX-License-Identifier: MIT
// Package prim_kruskal provides an implementation of Kruskal's Minimum Spanning Tree algorithm.
package prim_kruskal

import (
	"github.com/katalvlaran/synchghs/core"
)

// Kruskal computes the MST of graph with a disjoint-set (union-find) using
// path compression and union by rank.
//
// Steps:
//  1. Validate graph != nil; |V| == 0 → ErrDisconnected, |V| == 1 → empty tree.
//  2. graph.Edges() is already sorted by (weight, low, high).
//  3. Walk edges, keep those joining two different sets, stop at |V|-1.
//  4. Fewer than |V|-1 edges → ErrDisconnected.
//
// Complexity: O(E log E + α(V)·E). Memory: O(E + V).
func Kruskal(graph *core.Graph) ([]core.Edge, int64, error) {
	if graph == nil {
		return nil, 0, ErrInvalidGraph
	}
	vertices := graph.Vertices()
	if len(vertices) == 0 {
		return nil, 0, ErrDisconnected
	}
	if len(vertices) == 1 {
		return []core.Edge{}, 0, nil
	}

	parent := make(map[int]int, len(vertices))
	rank := make(map[int]int, len(vertices))
	for _, v := range vertices {
		parent[v] = v
	}

	// Iterative find with path halving.
	find := func(u int) int {
		for parent[u] != u {
			parent[u] = parent[parent[u]]
			u = parent[u]
		}

		return u
	}

	// union reports whether u and v were in different sets.
	union := func(u, v int) bool {
		ru, rv := find(u), find(v)
		if ru == rv {
			return false
		}
		switch {
		case rank[ru] < rank[rv]:
			parent[ru] = rv
		case rank[ru] > rank[rv]:
			parent[rv] = ru
		default:
			parent[rv] = ru
			rank[ru]++
		}

		return true
	}

	var (
		mst   = make([]core.Edge, 0, len(vertices)-1)
		total int64
	)
	for _, e := range graph.Edges() {
		if !union(e.Low, e.High) {
			continue // would close a cycle
		}
		mst = append(mst, e)
		total += e.Weight
		if len(mst) == len(vertices)-1 {
			break
		}
	}
	if len(mst) < len(vertices)-1 {
		return nil, 0, ErrDisconnected
	}

	return mst, total, nil
}
