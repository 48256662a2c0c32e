// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax

// Package floodmax elects a leader and builds a BFS tree under the same
// round discipline as package ghs, then reports the tree's maximum degree.
//
// A run has five stages:
//
//   - ELECT, rounds [0,N): every node sends (largest ID seen, hops to it) to
//     all neighbors each round. After N rounds every node knows the maximum
//     ID and its distance to it.
//   - BUILD, rounds [N,2N): the leader is marked first. A node marked in
//     round r sends SEARCH in round r+1 and EMPTY otherwise; an unmarked
//     node takes the smallest-ID SEARCH sender of its marking round as
//     parent.
//   - REPLY: each node answers every neighbor once, CHILD to its parent.
//   - DEGREE: tree degrees are convergecast to the leader, which keeps the
//     maximum.
//   - END: the leader floods the maximum degree down the tree.
//
// Frames travel over a ghs.Transport, and early messages wait in a
// ghs.Buffer until their stage and round begin.
//
//	n, err := floodmax.NewNode(id, size, neighbors, tr, floodmax.WithLogger(log))
//	res, err := n.Run(ctx)
//	fmt.Println(res.Leader, res.Parent, res.MaxDegree)
package floodmax
