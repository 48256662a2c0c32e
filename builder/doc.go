// SPDX-License-Identifier: MIT

// Package builder generates deterministic test and simulation topologies for
// synchghs: functional-option constructors that populate a *core.Graph.
//
// Components:
//
//   - Orchestration:
//     – BuildGraph(bopts, cons...): creates the graph, resolves options, applies
//     constructors in order.
//     – Constructor: func(g *core.Graph, cfg builderConfig) error.
//   - Options (BuilderOption):
//     – WithSeed / WithRand:   RNG for stochastic constructors and shuffling.
//     – WithFirstID:           first node ID (default 1).
//     – WithWeightFn:          weight per construction index.
//     – WithShuffledWeights:   permute construction indices before weighting,
//     so sequential weights stay distinct but land in random places.
//   - Weight functions (WeightFn):
//     – SequentialWeightFn (default): 1, 2, 3, ... distinct by construction.
//     – ConstantWeightFn, UniformWeightFn.
//   - Constructors: Path, Cycle, Star, Complete, Grid, RandomConnected.
//
// Guarantees:
//
//   - Same options, seed and constructor order ⇒ identical graphs.
//   - Parameter errors are sentinels wrapped with the constructor name.
//   - Option constructors panic on nil arguments (programmer error).
package builder
