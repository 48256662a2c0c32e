// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_star.go - Star(n): hub index 0 joined to spokes 1..n-1.
//
// Contract:
//   - n ≥ 2 (else ErrTooFewVertices).
//
// Complexity: O(n).

package builder

import "github.com/katalvlaran/synchghs/core"

const (
	methodStar   = "Star"
	minStarNodes = 2
)

// Star returns a Constructor for the star on n nodes.
func Star(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := validateMin(methodStar, n, minStarNodes); err != nil {
			return err
		}
		if err := addVertices(g, cfg, methodStar, n); err != nil {
			return err
		}
		pairs := make([]pair, 0, n-1)
		for i := 1; i < n; i++ {
			pairs = append(pairs, pair{0, i})
		}

		return addPairs(g, cfg, methodStar, pairs)
	}
}
