// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// helpers.go - shared vertex/edge insertion used by every constructor.
//
// Constructors first collect index pairs, then call addPairs once, so weight
// assignment (and optional shuffling) sees the whole edge set.

package builder

import (
	"fmt"

	"github.com/katalvlaran/synchghs/core"
)

// pair is an unordered edge between node indices U and V.
type pair struct{ U, V int }

// addVertices inserts node indices 0..n-1 mapped through cfg.id.
func addVertices(g *core.Graph, cfg builderConfig, method string, n int) error {
	for i := 0; i < n; i++ {
		if err := g.AddVertex(cfg.id(i)); err != nil {
			return fmt.Errorf("%s: AddVertex(%d): %w", method, cfg.id(i), err)
		}
	}

	return nil
}

// addPairs inserts every pair with a weight from cfg.weightFn. Pairs that
// already exist in g are skipped, so constructors compose idempotently.
func addPairs(g *core.Graph, cfg builderConfig, method string, pairs []pair) error {
	order := make([]int, len(pairs))
	for i := range order {
		order[i] = i
	}
	if cfg.shuffle {
		if cfg.rng == nil {
			return fmt.Errorf("%s: shuffled weights: %w", method, ErrNeedRandSource)
		}
		order = cfg.rng.Perm(len(pairs))
	}

	for i, p := range pairs {
		u, v := cfg.id(p.U), cfg.id(p.V)
		if g.HasEdge(u, v) {
			continue
		}
		w := cfg.weightFn(cfg.rng, order[i])
		if _, err := g.AddEdge(u, v, w); err != nil {
			return fmt.Errorf("%s: AddEdge(%d,%d,w=%d): %w", method, u, v, w, err)
		}
	}

	return nil
}

// validateMin returns ErrTooFewVertices when n < min.
func validateMin(method string, n, min int) error {
	if n < min {
		return fmt.Errorf("%s: n=%d < min=%d: %w", method, n, min, ErrTooFewVertices)
	}

	return nil
}
