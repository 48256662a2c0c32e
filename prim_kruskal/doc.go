// SPDX-License-Identifier: MIT

// Package prim_kruskal computes a reference Minimum Spanning Tree of a
// *core.Graph with either Kruskal's or Prim's algorithm.
//
// synchghs uses it as the oracle for the distributed protocol: the union of
// every node's tree edges must equal the tree returned here.
//
// Determinism
//
//	Both algorithms break weight ties with the core.Edge total order
//	(weight, low, high), the same order the distributed engine uses, so the
//	returned tree is unique even when weights repeat.
//
// Algorithms
//
//   - Kruskal(g) ([]core.Edge, int64, error)
//     Sort all edges, merge components with union-find (path compression and
//     union by rank). Time O(E log E), space O(V + E).
//
//   - Prim(g, root) ([]core.Edge, int64, error)
//     Grow one tree from root with a min-heap of crossing edges.
//     Time O(E log V), space O(V + E).
//
// Both return edges sorted by the core.Edge order.
//
// Errors
//
//   - ErrInvalidGraph: graph is nil, or Compute got an unknown method.
//   - core.ErrVertexNotFound: Prim root is not a vertex.
//   - ErrDisconnected: |V| == 0, or |V| > 1 and the graph is not connected.
package prim_kruskal
