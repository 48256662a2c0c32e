// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// gate.go - the round gate: every message is due, early or late against the
// node's (stage, round), counted once per sender, and early ones wait in a
// ghs.Buffer until the node catches up.

package floodmax

import "github.com/katalvlaran/synchghs/ghs"

type gate struct {
	stage    Stage
	round    int
	counted  map[int]bool
	received int
	buf      *ghs.Buffer[Message]
}

func newGate() *gate {
	return &gate{
		stage:   StageInit,
		round:   ghs.RoundAny,
		counted: make(map[int]bool),
		buf:     ghs.NewBuffer[Message](),
	}
}

// begin moves to a new position and resets the per-round count.
func (g *gate) begin(s Stage, round int) {
	g.stage, g.round = s, round
	g.counted = make(map[int]bool)
	g.received = 0
}

// classify orders m against the current position without changing state.
func (g *gate) classify(m Message) ghs.Verdict {
	ms := m.Action.Stage()
	switch {
	case ms > g.stage:
		return ghs.VerdictDefer
	case ms < g.stage:
		return ghs.VerdictStale
	case m.Action.roundScoped() && m.Round > g.round:
		return ghs.VerdictDefer
	case m.Action.roundScoped() && m.Round < g.round:
		return ghs.VerdictStale
	case g.counted[m.From]:
		return ghs.VerdictStale // re-delivery
	}

	return ghs.VerdictDue
}

// admit classifies m, counts it when due and buffers it when early.
func (g *gate) admit(m Message) ghs.Verdict {
	v := g.classify(m)
	switch v {
	case ghs.VerdictDue:
		g.counted[m.From] = true
		g.received++
	case ghs.VerdictDefer:
		g.buf.Add(m)
	}

	return v
}

// next removes the earliest buffered message that is no longer early and
// returns it with its verdict; a due message is counted.
func (g *gate) next() (Message, ghs.Verdict, bool) {
	m, ok := g.buf.TakeFirst(func(m Message) bool { return g.classify(m) != ghs.VerdictDefer })
	if !ok {
		return Message{}, ghs.VerdictDefer, false
	}
	v := g.classify(m)
	if v == ghs.VerdictDue {
		g.counted[m.From] = true
		g.received++
	}

	return m, v, true
}
