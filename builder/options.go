// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// options.go - functional options for BuildGraph.
//
// Option constructors panic on invalid arguments; constructors never do.

package builder

import "math/rand"

// BuilderOption mutates builderConfig before constructors run.
type BuilderOption func(*builderConfig)

// WithRand uses r for every stochastic decision.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed is WithRand(rand.New(rand.NewSource(seed))).
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithFirstID sets the ID of the first node; node i gets firstID+i.
func WithFirstID(id int) BuilderOption {
	if id < 0 {
		panic("builder: WithFirstID(id<0)")
	}
	return func(c *builderConfig) {
		c.firstID = id
	}
}

// WithWeightFn sets the weight function.
func WithWeightFn(fn WeightFn) BuilderOption {
	if fn == nil {
		panic("builder: WithWeightFn(nil)")
	}
	return func(c *builderConfig) {
		c.weightFn = fn
	}
}

// WithShuffledWeights permutes construction indices with the configured RNG
// before calling the weight function. Requires WithSeed or WithRand.
func WithShuffledWeights() BuilderOption {
	return func(c *builderConfig) {
		c.shuffle = true
	}
}
