// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// config.go - resolved builder configuration and shared constants.

package builder

import "math/rand"

// Shape names accepted by Shape.
const (
	ShapePath     = "path"
	ShapeCycle    = "cycle"
	ShapeStar     = "star"
	ShapeComplete = "complete"
	ShapeRandom   = "random"
)

const (
	defaultFirstID         = 1
	defaultRandomExtraProb = 0.3
)

// builderConfig is the immutable result of applying BuilderOptions.
type builderConfig struct {
	firstID  int        // ID of node index 0
	rng      *rand.Rand // nil unless WithSeed/WithRand
	weightFn WeightFn   // weight per construction index
	shuffle  bool       // permute construction indices before weighting
}

// newBuilderConfig resolves opts over the defaults.
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{
		firstID:  defaultFirstID,
		weightFn: SequentialWeightFn,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// id maps a zero-based node index to its node ID.
func (c builderConfig) id(i int) int { return c.firstID + i }
