// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// phase.go - per-level phase sequence.

package ghs

import "strconv"

// Phase is a step of one component level. Phases are ordered; the gate
// compares them to tell early messages from late ones.
type Phase int

const (
	PhaseInit Phase = iota // between levels, before SEARCH starts
	PhaseSearch
	PhaseTest
	PhaseConverge
	PhaseMerge
	PhaseJoin
)

var phaseNames = [...]string{
	PhaseInit:     "INIT",
	PhaseSearch:   "SEARCH",
	PhaseTest:     "TEST",
	PhaseConverge: "CONVERGE",
	PhaseMerge:    "MERGE",
	PhaseJoin:     "JOIN",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}

	return phaseNames[p]
}

// firstRound returns the first round of p's window for a network of n
// nodes. SEARCH owns [0,n), CONVERGE [n,2n), MERGE [2n,3n); the other
// phases are round-insensitive.
func (p Phase) firstRound(n int) int {
	switch p {
	case PhaseSearch:
		return 0
	case PhaseConverge:
		return n
	case PhaseMerge:
		return 2 * n
	default:
		return RoundAny
	}
}
