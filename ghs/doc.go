// SPDX-License-Identifier: MIT

// Package ghs implements the synchronous Gallager-Humblet-Spira minimum
// spanning tree protocol, one Node per process, over any Transport that keeps
// frames of one link in order.
//
// Every node starts as a level-0 component of its own. Each level runs five
// phases, after which components joined by their minimum outgoing edges
// merge and the level increases:
//
//	SEARCH    rounds [0, N)    leader floods its ID down the tree
//	TEST      round-free       each node finds its lightest outgoing edge
//	CONVERGE  rounds [N, 2N)   minima flow up to the leader
//	MERGE     rounds [2N, 3N)  leader floods the choice, or TERMINATE
//	JOIN      round-free       the chosen edge is realized on both ends
//
// Rounds are emulated: in a round phase every node sends exactly one message
// on every tree link, an EMPTY keep-alive when it has nothing to say, and
// moves on once it has one message from each expected link.
//
// Synchronizer
//
//	– Classifies each incoming Message as due, deferred or stale against the
//	  node's (level, phase, round).
//	– Deferred messages wait in a Buffer, scanned in arrival order after
//	  every position change.
//	– Re-deliveries are recognized per sender and dropped.
//
// Edges and "none"
//
//	– Edges compare by (weight, low, high); see core.Compare.
//	– A node or component with no outgoing edge reports none (an empty
//	  payload), which loses every comparison.
//
// Merging
//
//	– Every node sends one JOIN to each non-tree neighbor: the chosen edge
//	  across the chosen link and EMPTY elsewhere.
//	– When both ends of an edge chose it, the larger endpoint leads the
//	  merged component; everyone else learns the leader in the next SEARCH.
//
// Observability
//
//	– Structured logging via log/slog (WithLogger).
//	– An OpenTelemetry span per level and per phase (WithTracer).
//	– Event hooks for metrics (WithObserver); see package metrics.
package ghs
