// SPDX-License-Identifier: MIT

// Package bfs provides breadth-first search over a core.Graph, returning
// hop distances, parent links and visit order.
//
// What
//
//   - Explore vertices in non-decreasing hop distance from a start vertex.
//   - BFSResult carries Order, Depth and Parent, plus Reached, Height and
//     PathTo helpers.
//   - WithOnVisit may abort the walk with an error; WithFilterNeighbor
//     prunes links; WithMaxDepth bounds the walk.
//
// Where it is used
//
//   - config rejects topologies that are not connected: GHS only
//     terminates with a single leader on a connected network.
//   - sim checks that the aggregated tree spans every reporting node and
//     records its height from the leader.
//
// Determinism
//
//	core.Graph.NeighborIDs is sorted and neighbors are enqueued in that
//	order, so the visit sequence is reproducible.
//
// Complexity (V = |Vertices|, E = |Edges|)
//
//   - Time:   O(V + E)
//   - Memory: O(V)
package bfs
