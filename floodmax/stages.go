// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// stages.go - the five stages and their message handlers.

package floodmax

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/katalvlaran/synchghs/ghs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// runStages drives ELECT through END inside one run span with a child span
// per stage.
func (n *Node) runStages(ctx context.Context) error {
	attrs := trace.WithAttributes(attribute.Int("floodmax.node", n.id))
	ctx, span := n.cfg.tracer.Start(ctx, "floodmax.run", attrs)
	defer span.End()

	steps := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageElect, n.elect},
		{StageBuild, n.build},
		{StageReply, n.reply},
		{StageDegree, n.convergeDegree},
		{StageEnd, n.end},
	}
	for _, st := range steps {
		sctx, sspan := n.cfg.tracer.Start(ctx, "floodmax."+strings.ToLower(st.stage.String()), attrs)
		err := st.run(sctx)
		if err != nil {
			sspan.RecordError(err)
		}
		sspan.End()
		if err != nil {
			span.RecordError(err)
			return err
		}
	}

	return nil
}

// runRounds runs the N rounds of a round-scoped stage starting at first. In
// each round send queues this node's messages, then the node waits for one
// message from every neighbor.
func (n *Node) runRounds(ctx context.Context, s Stage, first int, send func()) error {
	for r := first; r < first+n.size; r++ {
		n.mu.Lock()
		n.gate.begin(s, r)
		send()
		n.drainLocked()
		n.cond.Broadcast()
		n.unlockAndFlush()

		n.mu.Lock()
		err := n.waitLocked(ctx, func() bool { return n.gate.received >= len(n.nbIDs) })
		n.unlockAndFlush()
		if err != nil {
			return err
		}
	}

	return nil
}

// elect floods (largest ID, distance) for N rounds.
func (n *Node) elect(ctx context.Context) error {
	err := n.runRounds(ctx, StageElect, 0, func() {
		for _, nb := range n.nbIDs {
			n.queueLocked(Message{Action: ActionElect, To: nb, Value: n.largest, Dist: n.dist})
		}
	})
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.log.Info("leader elected", slog.Int("leader", n.largest), slog.Int("distance", n.dist))
	n.mu.Unlock()

	return nil
}

func (n *Node) onElect(m Message) {
	switch {
	case m.Value > n.largest:
		n.largest, n.dist = m.Value, m.Dist+1
	case m.Value == n.largest && m.Value != n.id && m.Dist+1 < n.dist:
		n.dist = m.Dist + 1
	}
}

// build grows the BFS tree from the leader over rounds [N,2N).
func (n *Node) build(ctx context.Context) error {
	n.mu.Lock()
	if n.largest == n.id {
		n.marked = true
		n.pendingSearch = true
	}
	n.mu.Unlock()

	err := n.runRounds(ctx, StageBuild, n.size, func() {
		mark := n.pendingSearch
		n.pendingSearch = false
		for _, nb := range n.nbIDs {
			n.queueLocked(Message{Action: ActionBuild, To: nb, Mark: mark})
		}
	})
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.marked {
		return fmt.Errorf("build(%d): %w", n.id, ErrNotReached)
	}
	if res := n.resultLocked(); res.Depth != res.Distance {
		n.log.Warn("tree depth differs from election distance",
			slog.Int("depth", res.Depth), slog.Int("distance", res.Distance))
	}

	return nil
}

// onBuild marks the node on its first SEARCH. Among the SEARCH messages of
// the marking round the smallest sender wins.
func (n *Node) onBuild(m Message) {
	if !m.Mark {
		return
	}
	switch {
	case !n.marked:
		n.marked, n.markRound, n.parent = true, m.Round, m.From
		n.pendingSearch = true
	case n.parent != NoParent && m.Round == n.markRound && m.From < n.parent:
		n.parent = m.From
	}
}

// reply tells every neighbor whether it is this node's parent.
func (n *Node) reply(ctx context.Context) error {
	n.mu.Lock()
	n.gate.begin(StageReply, ghs.RoundAny)
	for _, nb := range n.nbIDs {
		n.queueLocked(Message{Action: ActionReply, To: nb, Mark: nb == n.parent})
	}
	n.drainLocked()
	n.cond.Broadcast()
	n.unlockAndFlush()

	n.mu.Lock()
	err := n.waitLocked(ctx, func() bool { return n.gate.received >= len(n.nbIDs) })
	n.unlockAndFlush()

	return err
}

func (n *Node) onReply(m Message) {
	if m.Mark {
		n.children = append(n.children, m.From)
	}
}

// convergeDegree collects the children's subtree maxima and passes the
// largest tree degree up to the parent.
func (n *Node) convergeDegree(ctx context.Context) error {
	n.mu.Lock()
	slices.Sort(n.children)
	n.gate.begin(StageDegree, ghs.RoundAny)
	n.degree = len(n.children)
	if n.parent != NoParent {
		n.degree++
	}
	n.drainLocked()

	err := n.waitLocked(ctx, func() bool { return n.gate.received >= len(n.children) })
	if err == nil && n.parent != NoParent {
		n.queueLocked(Message{Action: ActionDegree, To: n.parent, Value: n.degree})
	}
	n.unlockAndFlush()

	return err
}

func (n *Node) onDegree(m Message) {
	if _, ok := slices.BinarySearch(n.children, m.From); !ok {
		n.dropLocked(m, "not a child")
		return
	}
	n.degree = max(n.degree, m.Value)
}

// end floods the maximum degree from the leader to every node.
func (n *Node) end(ctx context.Context) error {
	n.mu.Lock()
	n.gate.begin(StageEnd, ghs.RoundAny)
	if n.parent == NoParent {
		n.maxDegree = n.degree
		n.finishLocked()
		n.log.Info("tree max degree", slog.Int("max_degree", n.maxDegree))
	}
	n.drainLocked()

	err := n.waitLocked(ctx, func() bool { return n.done })
	n.unlockAndFlush()

	return err
}

func (n *Node) onEnd(m Message) {
	if m.From != n.parent {
		n.dropLocked(m, "not the parent")
		return
	}
	n.maxDegree = m.Value
	n.finishLocked()
}

// finishLocked records completion and forwards END to the children.
func (n *Node) finishLocked() {
	n.done = true
	for _, c := range n.children {
		n.queueLocked(Message{Action: ActionEnd, To: c, Value: n.maxDegree})
	}
}
