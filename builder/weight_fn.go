// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// weight_fn.go - edge weight policies.

package builder

import (
	"fmt"
	"math/rand"
)

// WeightFn returns the weight of the edge with zero-based construction
// index i. rng may be nil when the build has no random source.
type WeightFn func(rng *rand.Rand, i int) int64

// SequentialWeightFn yields i+1, so every edge of one build has a distinct weight.
func SequentialWeightFn(_ *rand.Rand, i int) int64 { return int64(i + 1) }

// ConstantWeightFn returns a WeightFn that always yields value.
func ConstantWeightFn(value int64) WeightFn {
	if value < 0 {
		panic(fmt.Sprintf("ConstantWeightFn: value must be ≥ 0, got %d", value))
	}
	return func(_ *rand.Rand, _ int) int64 { return value }
}

// UniformWeightFn returns a WeightFn drawing uniformly from [min,max].
// Without an RNG it yields min.
func UniformWeightFn(min, max int64) WeightFn {
	if min < 0 || max < min {
		panic(fmt.Sprintf("UniformWeightFn: require 0 ≤ min ≤ max, got min=%d, max=%d", min, max))
	}
	return func(rng *rand.Rand, _ int) int64 {
		if rng == nil || max == min {
			return min
		}
		return min + rng.Int63n(max-min+1)
	}
}
