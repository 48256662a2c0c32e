// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_cycle.go - Cycle(n): the ring 0-1-...-(n-1)-0.
//
// Contract:
//   - n ≥ 3 (else ErrTooFewVertices).
//   - Edge i joins indices i and (i+1) mod n, so the closing edge is last
//     and, under SequentialWeightFn, the heaviest.
//
// Complexity: O(n).

package builder

import "github.com/katalvlaran/synchghs/core"

const (
	methodCycle   = "Cycle"
	minCycleNodes = 3
)

// Cycle returns a Constructor for the ring on n nodes.
func Cycle(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := validateMin(methodCycle, n, minCycleNodes); err != nil {
			return err
		}
		if err := addVertices(g, cfg, methodCycle, n); err != nil {
			return err
		}
		pairs := make([]pair, 0, n)
		for i := 0; i < n; i++ {
			pairs = append(pairs, pair{i, (i + 1) % n})
		}

		return addPairs(g, cfg, methodCycle, pairs)
	}
}
