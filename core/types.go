// SPDX-License-Identifier: MIT
// Package core declares the Graph type, its sentinel errors and the NewGraph
// constructor. Method implementations live in methods.go.

package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph and edge operations.
var (
	// ErrNegativeVertexID indicates a vertex ID below zero.
	ErrNegativeVertexID = errors.New("core: negative vertex ID")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")

	// ErrBadEdgeFormat indicates an edge text form that is not "low,high,weight".
	ErrBadEdgeFormat = errors.New("core: bad edge format")
)

// Graph is an undirected, weighted, simple graph over integer node IDs.
//
// Adjacency is stored as adjacency[u][v] = weight and mirrored for v, giving
// constant-time existence and weight lookup.
type Graph struct {
	muVert    sync.RWMutex // guards vertices
	muEdgeAdj sync.RWMutex // guards adjacency and edgeCount

	vertices  map[int]struct{}
	adjacency map[int]map[int]int64
	edgeCount int
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		vertices:  make(map[int]struct{}),
		adjacency: make(map[int]map[int]int64),
	}
}
