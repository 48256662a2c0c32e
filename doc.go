// SPDX-License-Identifier: MIT

// Package synchghs computes a minimum spanning tree over a network of
// processes that know only their own links, using the synchronous
// Gallager-Humblet-Spira protocol.
//
// What is synchghs?
//
//	Every node starts as a one-node component at level 0. Each level the
//	components find their minimum-weight outgoing edge and merge across it,
//	so at least half of them disappear per level and the run ends after at
//	most log2(N) levels with one component whose tree is the MST.
//
//	The protocol runs in lock-step rounds emulated on FIFO links: every
//	node sends exactly one message per tree link per round, an EMPTY
//	keep-alive when it has nothing to say, and counts its way forward.
//
// Under the hood:
//
//	core/         - canonical Edge with its total order, and an int-keyed Graph
//	ghs/          - the per-node engine: message codec, round synchronizer,
//	                deferral buffer, candidate edges, tree, phases
//	floodmax/     - FloodMax leader election and a BFS tree on the same rounds
//	transport/    - links: memory (in-process), tcp and mqtt
//	config/       - text and YAML topologies, GHS_* environment overrides
//	metrics/      - Prometheus observer and /metrics server
//	sim/          - run a whole network in-process, aggregate and verify;
//	                also the election runner
//	builder/      - generated topologies: path, cycle, star, grid, random
//	prim_kruskal/ - sequential reference MST
//	bfs/          - reachability, tree height and the election reference
//	cmd/ghs/      - the CLI: node, simulate, verify, elect
//
// Quick ASCII example:
//
//	    1───2          weights: (1,2)=1 (2,4)=2 (3,4)=3 (1,3)=4
//	    │   │
//	    3───4          MST: (1,2) (2,4) (3,4), weight 6
//
//	go install github.com/katalvlaran/synchghs/cmd/ghs@latest
//	ghs simulate --shape random --n 32 --seed 7
package synchghs
