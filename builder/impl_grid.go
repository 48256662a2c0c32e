// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// impl_grid.go - Grid(rows, cols): 4-neighbour lattice.
//
// Contract:
//   - rows, cols ≥ 1 and rows*cols ≥ 2 (else ErrTooFewVertices).
//   - Cell (r,c) has index r*cols + c.
//   - Per cell: right neighbour first, then bottom neighbour.
//
// Complexity: O(rows*cols).

package builder

import (
	"fmt"

	"github.com/katalvlaran/synchghs/core"
)

const (
	methodGrid = "Grid"
	minGridDim = 1
)

// Grid returns a Constructor for a rows×cols lattice.
func Grid(rows, cols int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if rows < minGridDim || cols < minGridDim || rows*cols < 2 {
			return fmt.Errorf("%s: rows=%d, cols=%d: %w", methodGrid, rows, cols, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, methodGrid, rows*cols); err != nil {
			return err
		}
		var pairs []pair
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := r*cols + c
				if c+1 < cols {
					pairs = append(pairs, pair{u, u + 1})
				}
				if r+1 < rows {
					pairs = append(pairs, pair{u, u + cols})
				}
			}
		}

		return addPairs(g, cfg, methodGrid, pairs)
	}
}
