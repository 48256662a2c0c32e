// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_complete.go - Complete(n): K_n.
//
// Contract:
//   - n ≥ 2 (else ErrTooFewVertices).
//   - Pairs in (i asc, j asc, j > i) order.
//
// Complexity: O(n²).

package builder

import "github.com/katalvlaran/synchghs/core"

const (
	methodComplete   = "Complete"
	minCompleteNodes = 2
)

// Complete returns a Constructor for the complete graph on n nodes.
func Complete(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := validateMin(methodComplete, n, minCompleteNodes); err != nil {
			return err
		}
		if err := addVertices(g, cfg, methodComplete, n); err != nil {
			return err
		}
		pairs := make([]pair, 0, n*(n-1)/2)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pair{i, j})
			}
		}

		return addPairs(g, cfg, methodComplete, pairs)
	}
}
