// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// api.go - public entry-points for the builder package.
//
// Design contract:
//   - One orchestrator: BuildGraph(bopts, cons...). Creates g, resolves cfg, runs cons in order.
//   - Public factories are declared in impl_*.go; this file holds the shared types.
//   - Determinism: same inputs/options/seed and constructor order ⇒ identical graphs.

package builder

import (
	"fmt"

	"github.com/katalvlaran/synchghs/core"
)

// Constructor applies a deterministic graph mutation using the resolved
// builderConfig. Constructors validate parameters early and return sentinel
// errors instead of panicking.
type Constructor func(g *core.Graph, cfg builderConfig) error

// BuildGraph creates a new core.Graph, resolves the builder configuration
// from bopts and applies all constructors in order. A constructor error is
// wrapped with "BuildGraph: %w" and returned immediately.
func BuildGraph(bopts []BuilderOption, cons ...Constructor) (*core.Graph, error) {
	g := core.NewGraph()
	cfg := newBuilderConfig(bopts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(g, cfg); err != nil {
			return nil, fmt.Errorf("BuildGraph: %w", err)
		}
	}

	return g, nil
}

// Shape returns the constructor registered under name for n nodes, as used by
// the CLI's --shape flag. RandomConnected uses p=0.3.
func Shape(name string, n int) (Constructor, error) {
	switch name {
	case ShapePath:
		return Path(n), nil
	case ShapeCycle:
		return Cycle(n), nil
	case ShapeStar:
		return Star(n), nil
	case ShapeComplete:
		return Complete(n), nil
	case ShapeRandom:
		return RandomConnected(n, defaultRandomExtraProb), nil
	default:
		return nil, fmt.Errorf("Shape(%q): %w", name, ErrUnknownShape)
	}
}
