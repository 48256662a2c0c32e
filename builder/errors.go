// SPDX-License-Identifier: MIT
// Package: synchghs/builder
//
// errors.go - sentinel errors. Constructors wrap them as
// fmt.Errorf("%s: ...: %w", method, ..., ErrX) so callers branch with errors.Is.

package builder

import "errors"

// ErrTooFewVertices indicates a size parameter below the constructor minimum.
var ErrTooFewVertices = errors.New("builder: parameter too small")

// ErrInvalidProbability indicates a probability outside [0,1].
var ErrInvalidProbability = errors.New("builder: probability out of range")

// ErrNeedRandSource indicates a stochastic path ran without WithSeed/WithRand.
var ErrNeedRandSource = errors.New("builder: rng is required")

// ErrConstructFailed indicates a nil constructor or an unexpected core failure.
var ErrConstructFailed = errors.New("builder: construction failed")

// ErrUnknownShape indicates a shape name Shape does not know.
var ErrUnknownShape = errors.New("builder: unknown shape")
