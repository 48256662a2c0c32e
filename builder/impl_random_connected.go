// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_random_connected.go - RandomConnected(n, p): random spanning tree plus
// Erdős–Rényi extras.
//
// Contract:
//   - n ≥ 2 (else ErrTooFewVertices); 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   - cfg.rng required (else ErrNeedRandSource).
//   - Index i ≥ 1 attaches to a uniformly chosen j < i, which makes the result
//     connected; then every remaining pair {i<j} is added with probability p.
//
// Complexity: O(n²) Bernoulli trials.
//
// Determinism: fixed trial order (tree first, then i asc, j asc).

package builder

import (
	"fmt"

	"github.com/katalvlaran/synchghs/core"
)

const (
	methodRandomConnected = "RandomConnected"
	minRandomNodes        = 2
	probMin               = 0.0
	probMax               = 1.0
)

// RandomConnected returns a Constructor for a connected random graph.
func RandomConnected(n int, p float64) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := validateMin(methodRandomConnected, n, minRandomNodes); err != nil {
			return err
		}
		if p < probMin || p > probMax {
			return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w",
				methodRandomConnected, p, probMin, probMax, ErrInvalidProbability)
		}
		if cfg.rng == nil {
			return fmt.Errorf("%s: %w", methodRandomConnected, ErrNeedRandSource)
		}
		if err := addVertices(g, cfg, methodRandomConnected, n); err != nil {
			return err
		}

		tree := make(map[pair]bool, n-1)
		pairs := make([]pair, 0, n-1)
		for i := 1; i < n; i++ {
			pr := pair{cfg.rng.Intn(i), i}
			tree[pr] = true
			pairs = append(pairs, pr)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if tree[pair{i, j}] {
					continue
				}
				if cfg.rng.Float64() < p {
					pairs = append(pairs, pair{i, j})
				}
			}
		}

		return addPairs(g, cfg, methodRandomConnected, pairs)
	}
}
