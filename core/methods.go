// SPDX-License-Identifier: MIT
// Package core: Graph method implementations.
//
// Locks are always taken in the order muVert then muEdgeAdj.

package core

import (
	"fmt"
	"sort"
)

// AddVertex inserts a vertex with the given ID. Adding an existing vertex is a no-op.
// Returns ErrNegativeVertexID if id < 0.
// Complexity: O(1) amortized.
func (g *Graph) AddVertex(id int) error {
	if id < 0 {
		return fmt.Errorf("AddVertex(%d): %w", id, ErrNegativeVertexID)
	}
	g.muVert.Lock()
	defer g.muVert.Unlock()
	if _, exists := g.vertices[id]; exists {
		return nil // idempotent
	}
	g.vertices[id] = struct{}{}

	g.muEdgeAdj.Lock()
	if g.adjacency[id] == nil {
		g.adjacency[id] = make(map[int]int64)
	}
	g.muEdgeAdj.Unlock()

	return nil
}

// HasVertex reports whether a vertex with the given ID exists.
// Complexity: O(1).
func (g *Graph) HasVertex(id int) bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	_, exists := g.vertices[id]

	return exists
}

// AddEdge connects u and v with weight w, auto-adding both endpoints, and
// returns the canonical Edge.
//
// Returns ErrNegativeVertexID, ErrLoopNotAllowed, ErrMultiEdgeNotAllowed.
// Complexity: O(1).
func (g *Graph) AddEdge(u, v int, w int64) (Edge, error) {
	if u == v {
		return Edge{}, fmt.Errorf("AddEdge(%d,%d): %w", u, v, ErrLoopNotAllowed)
	}
	if err := g.AddVertex(u); err != nil {
		return Edge{}, err
	}
	if err := g.AddVertex(v); err != nil {
		return Edge{}, err
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	if _, ok := g.adjacency[u][v]; ok {
		return Edge{}, fmt.Errorf("AddEdge(%d,%d): %w", u, v, ErrMultiEdgeNotAllowed)
	}
	g.adjacency[u][v] = w
	g.adjacency[v][u] = w // mirror
	g.edgeCount++

	return NewEdge(u, v, w), nil
}

// HasEdge reports whether u and v are adjacent.
// Complexity: O(1).
func (g *Graph) HasEdge(u, v int) bool {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	_, ok := g.adjacency[u][v]

	return ok
}

// Weight returns the weight of edge {u,v} or ErrEdgeNotFound.
// Complexity: O(1).
func (g *Graph) Weight(u, v int) (int64, error) {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	w, ok := g.adjacency[u][v]
	if !ok {
		return 0, fmt.Errorf("Weight(%d,%d): %w", u, v, ErrEdgeNotFound)
	}

	return w, nil
}

// Neighbors returns the canonical edges incident to id, sorted by the
// neighbor's ID. Returns ErrVertexNotFound for an unknown vertex.
// Complexity: O(d log d).
func (g *Graph) Neighbors(id int) ([]Edge, error) {
	if !g.HasVertex(id) {
		return nil, fmt.Errorf("Neighbors(%d): %w", id, ErrVertexNotFound)
	}
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	out := make([]Edge, 0, len(g.adjacency[id]))
	for nb, w := range g.adjacency[id] {
		out = append(out, NewEdge(id, nb, w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Other(id) < out[j].Other(id) })

	return out, nil
}

// NeighborIDs returns the sorted IDs adjacent to id.
// Complexity: O(d log d).
func (g *Graph) NeighborIDs(id int) ([]int, error) {
	edges, err := g.Neighbors(id)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(edges))
	for i, e := range edges {
		ids[i] = e.Other(id)
	}

	return ids, nil
}

// Vertices returns all vertex IDs in ascending order.
// Complexity: O(V log V).
func (g *Graph) Vertices() []int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	ids := make([]int, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Edges returns every edge once, sorted by the Edge total order.
// Complexity: O(E log E).
func (g *Graph) Edges() []Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]Edge, 0, g.edgeCount)
	for u, row := range g.adjacency {
		for v, w := range row {
			if u < v { // each undirected edge once
				out = append(out, NewEdge(u, v, w))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	return out
}

// VertexCount returns |V|.
func (g *Graph) VertexCount() int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	return len(g.vertices)
}

// EdgeCount returns |E|.
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return g.edgeCount
}

// Clone returns a deep copy of g.
// Complexity: O(V + E).
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, id := range g.Vertices() {
		_ = c.AddVertex(id) // ids already validated
	}
	for _, e := range g.Edges() {
		_, _ = c.AddEdge(e.Low, e.High, e.Weight)
	}

	return c
}
