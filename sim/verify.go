// SPDX-License-Identifier: MIT
// Package: synchghs/sim
//
// verify.go - compare a distributed outcome with a sequential MST.

package sim

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/prim_kruskal"
)

var (
	// ErrEmptyGraph indicates a run or aggregation over zero nodes.
	ErrEmptyGraph = errors.New("sim: empty graph")

	// ErrDisagreement indicates node reports that do not describe one tree.
	ErrDisagreement = errors.New("sim: nodes disagree")

	// ErrMismatch indicates a tree that differs from the reference MST.
	ErrMismatch = errors.New("sim: tree differs from reference MST")
)

// Verify checks rep.Tree against the MST of g computed by opts' method.
// Edge order is total, so the MST is unique and compared edge by edge.
func Verify(g *core.Graph, rep *Report, opts prim_kruskal.MSTOptions) error {
	want, weight, err := prim_kruskal.Compute(g, opts)
	if err != nil {
		return fmt.Errorf("Verify: %w", err)
	}
	if len(rep.Results) != g.VertexCount() {
		return fmt.Errorf("Verify: %d reports for %d nodes: %w", len(rep.Results), g.VertexCount(), ErrMismatch)
	}
	if weight != rep.Weight || len(want) != len(rep.Tree) {
		return fmt.Errorf("Verify: weight %d with %d edges, want %d with %d: %w",
			rep.Weight, len(rep.Tree), weight, len(want), ErrMismatch)
	}
	for i := range want {
		if want[i] != rep.Tree[i] {
			return fmt.Errorf("Verify: edge %d is %s, want %s: %w", i, rep.Tree[i], want[i], ErrMismatch)
		}
	}

	return nil
}
