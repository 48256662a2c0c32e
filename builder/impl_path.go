// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_path.go - Path(n): nodes 0..n-1 linked as 0-1-...-(n-1).
//
// Contract:
//   - n ≥ 2 (else ErrTooFewVertices).
//   - Edge i joins indices i and i+1.
//
// Complexity: O(n).

package builder

import "github.com/katalvlaran/synchghs/core"

const (
	methodPath   = "Path"
	minPathNodes = 2
)

// Path returns a Constructor for the simple path on n nodes.
func Path(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := validateMin(methodPath, n, minPathNodes); err != nil {
			return err
		}
		if err := addVertices(g, cfg, methodPath, n); err != nil {
			return err
		}
		pairs := make([]pair, 0, n-1)
		for i := 0; i+1 < n; i++ {
			pairs = append(pairs, pair{i, i + 1})
		}

		return addPairs(g, cfg, methodPath, pairs)
	}
}
