// SPDX-License-Identifier: MIT

// Package core provides the topology primitives shared by every synchghs package:
// the canonical undirected Edge value and a thread-safe, weighted, simple Graph
// keyed by integer node IDs.
//
// Edge
//
//	– Canonical form: Low < High, always. NewEdge(u, v, w) sorts the endpoints.
//	– Total order: weight ascending, then Low, then High (Compare / Less).
//	  Two nodes computing the "same" edge therefore compare it identically
//	  without any communication.
//	– The absent edge ("none") is a nil *Edge. Compare orders none after every
//	  concrete edge, so none never wins a minimum.
//	– Text form "low,high,weight" (String / ParseEdge) is used only at the
//	  wire and config boundaries.
//
// Graph
//
//	– Undirected, weighted, no self-loops, no parallel edges.
//	– Node IDs are non-negative ints; AddEdge auto-adds endpoints.
//	– Separate sync.RWMutex for vertices (muVert) and edges+adjacency (muEdgeAdj).
//	– Deterministic iteration: Vertices(), Edges(), Neighbors() are sorted.
//
// Core Methods:
//
//	AddVertex(id int) error                 // O(1)
//	HasVertex(id int) bool                  // O(1)
//	AddEdge(u, v int, w int64) (Edge, error) // O(1)
//	HasEdge(u, v int) bool                  // O(1)
//	Weight(u, v int) (int64, error)         // O(1)
//	Neighbors(id int) ([]Edge, error)       // O(d log d)
//	NeighborIDs(id int) ([]int, error)      // O(d log d)
//	Vertices() []int                        // O(V log V)
//	Edges() []Edge                          // O(E log E)
//	VertexCount(), EdgeCount() int          // O(1)
//	Clone() *Graph                          // O(V+E)
//
// Errors:
//
//	ErrNegativeVertexID    – vertex ID below zero.
//	ErrVertexNotFound      – requested vertex does not exist.
//	ErrEdgeNotFound        – requested edge does not exist.
//	ErrLoopNotAllowed      – AddEdge(v, v, w).
//	ErrMultiEdgeNotAllowed – second AddEdge for the same endpoints.
//	ErrBadEdgeFormat       – ParseEdge input is not "low,high,weight".
package core
