// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// phases.go - SEARCH, TEST, CONVERGE, MERGE and JOIN for one level, the
// level transition (updateTree) and the TERMINATE flood.
//
// Round phases send exactly one message per link per round (real or EMPTY)
// and wait for exactly one per expected link, so every node can count its
// way through the round without timeouts. Expected counts are derived from
// the tree at the start of each phase.

package ghs

import (
	"context"
	"log/slog"

	"github.com/katalvlaran/synchghs/core"
)

// runRounds drives one round window of phase. Each round it moves the gate,
// lets send queue that round's messages, drains the buffer, flushes, and
// waits for expected due messages.
func (n *Node) runRounds(ctx context.Context, phase Phase, expected int, send func()) error {
	first := phase.firstRound(n.size)
	for r := first; r < first+n.size; r++ {
		n.mu.Lock()
		if n.terminated {
			n.unlockAndFlush()
			return errTerminated
		}
		n.gate.Begin(n.gate.Level(), phase, r)
		send()
		n.drainLocked()
		n.cond.Broadcast()
		n.unlockAndFlush()

		n.mu.Lock()
		err := n.waitLocked(ctx, func() bool { return n.gate.Received() >= expected })
		n.unlockAndFlush()
		if err != nil {
			return err
		}
	}

	return nil
}

// search floods the leader's identity down the tree. A leader starts the
// flood; every other node adopts the first SEARCH sender as parent and the
// advertised component ID, then forwards in the next round.
func (n *Node) search(ctx context.Context) error {
	n.mu.Lock()
	if n.componentID == n.id {
		n.parent = n.id
		n.pendingSearch = true
	}
	expected := n.tree.Len()
	n.mu.Unlock()

	return n.runRounds(ctx, PhaseSearch, expected, func() {
		st := StatusEmpty
		if n.pendingSearch {
			st, n.pendingSearch = StatusSearch, false
		}
		for _, nb := range n.tree.Neighbors() {
			n.queueLocked(ActionSearch, nb, Token(st))
		}
	})
}

func (n *Node) onSearch(m Message) {
	if m.Payload.Status != StatusSearch || n.parent != noPeer {
		return
	}
	n.parent = m.From
	n.componentID = m.Src
	n.pendingSearch = true
	n.log.Debug("joined component", slog.Int("component", m.Src), slog.Int("parent", m.From))
}

// test finds this node's lightest outgoing edge: it tries candidates in
// order until one is ACCEPTed or none remain.
func (n *Node) test(ctx context.Context) error {
	n.mu.Lock()
	n.gate.Begin(n.gate.Level(), PhaseTest, RoundAny)
	n.local, n.mwoe = nil, nil
	n.drainLocked()
	n.cond.Broadcast()

	for n.local == nil && n.cand.Len() > 0 {
		e, _ := n.cand.Min()
		n.testing = &e
		peer := e.Other(n.id)
		n.gate.Await(peer)
		n.queueLocked(ActionTest, peer, Payload{})
		n.unlockAndFlush()

		n.mu.Lock()
		if err := n.waitLocked(ctx, func() bool { return n.gate.Awaiting() == noPeer }); err != nil {
			n.unlockAndFlush()
			return err
		}
	}
	n.testing = nil
	n.unlockAndFlush()

	return nil
}

// onTest answers whether the sender's component differs from ours.
func (n *Node) onTest(m Message) {
	st := StatusReject
	if n.componentID != m.Src {
		st = StatusAccept
	}
	n.queueLocked(ActionReply, m.From, Token(st))
}

// onReply settles the edge under test. It leaves the candidate set either
// way: an accepted edge is restored after MERGE unless it becomes a tree
// edge, a rejected one is internal for good.
func (n *Node) onReply(m Message) {
	if n.testing == nil {
		n.dropLocked(m, DropUnexpected)
		return
	}
	e := *n.testing
	n.testing = nil
	n.cand.Remove(e)
	switch m.Payload.Status {
	case StatusAccept:
		n.local = &e
		n.mwoe = &e
	case StatusReject:
	default:
		n.log.Error("bad reply content", slog.String("msg", m.String()))
		n.cfg.observer.MessageDropped(n.id, m, DropUnexpected)
	}
}

// converge aggregates the minimum outgoing edge from the leaves up to the
// leader. A non-leader sends its result to its parent once every child has
// reported; until then, and afterwards, it sends EMPTY.
func (n *Node) converge(ctx context.Context) error {
	n.mu.Lock()
	leader := n.componentID == n.id
	n.children = n.tree.Len()
	if !leader {
		n.children--
	}
	n.childMsgs = 0
	n.converged = n.children == 0
	n.convergeSent = false
	n.mwoe = n.local
	expected := n.children
	n.mu.Unlock()

	return n.runRounds(ctx, PhaseConverge, expected, func() {
		if leader {
			return
		}
		p := Token(StatusEmpty)
		if n.converged && !n.convergeSent {
			p, n.convergeSent = EdgePayload(n.mwoe), true
		}
		n.queueLocked(ActionConverge, n.parent, p)
	})
}

func (n *Node) onConverge(m Message) {
	if m.Payload.IsEmpty() {
		return
	}
	n.mwoe = core.Min(n.mwoe, m.Payload.Edge)
	n.childMsgs++
	if n.childMsgs >= n.children {
		n.converged = true
	}
}

// merge floods the leader's choice down the tree, or ends the run when the
// leader has nothing left to merge with.
func (n *Node) merge(ctx context.Context) error {
	n.mu.Lock()
	n.newComponentID = noComponent
	n.hasGlobal, n.pendingMerge, n.gotMerge = false, false, false
	if n.componentID == n.id {
		if n.checkTerminationLocked() {
			n.terminateLocked(noPeer)
			n.unlockAndFlush()
			return errTerminated
		}
		n.hasGlobal = n.mwoe.Has(n.id)
		n.pendingMerge, n.gotMerge = true, true
	}
	expected := n.tree.Len()
	n.mu.Unlock()

	err := n.runRounds(ctx, PhaseMerge, expected, func() {
		p := Token(StatusEmpty)
		if n.pendingMerge {
			p, n.pendingMerge = EdgePayload(n.mwoe), false
		}
		for _, nb := range n.tree.Neighbors() {
			n.queueLocked(ActionMerge, nb, p)
		}
	})
	if err != nil {
		return err
	}

	n.mu.Lock()
	if n.local != nil && core.Compare(n.local, n.mwoe) != 0 {
		n.cand.Push(*n.local) // still outgoing, just not chosen
	}
	n.mu.Unlock()

	return nil
}

// checkTerminationLocked reports whether this leader's component already
// spans the graph: no outgoing edge was found anywhere in it.
func (n *Node) checkTerminationLocked() bool {
	return n.componentID == n.id && n.mwoe == nil
}

func (n *Node) onMerge(m Message) {
	if m.Payload.IsEmpty() || n.gotMerge {
		return
	}
	if m.Payload.Edge == nil {
		n.dropLocked(m, DropUnexpected)
		return
	}
	e := *m.Payload.Edge
	n.mwoe = &e
	n.hasGlobal = e.Has(n.id)
	n.pendingMerge, n.gotMerge = true, true
}

// join realizes the chosen edge. Every non-tree neighbor gets exactly one
// JOIN: the edge across the chosen link, EMPTY elsewhere. The node waits
// for one JOIN from each non-tree neighbor.
func (n *Node) join(ctx context.Context) error {
	n.mu.Lock()
	n.gate.Begin(n.gate.Level(), PhaseJoin, RoundAny)
	expected := 0
	for _, nb := range n.nbIDs {
		if n.tree.HasNeighbor(nb) {
			continue
		}
		expected++
		p := Token(StatusEmpty)
		if n.hasGlobal && n.mwoe.Other(n.id) == nb {
			p = EdgePayload(n.mwoe)
			n.tree.Stage(nb, *n.mwoe)
		}
		n.queueLocked(ActionJoin, nb, p)
	}
	n.drainLocked()
	n.cond.Broadcast()
	n.unlockAndFlush()

	n.mu.Lock()
	err := n.waitLocked(ctx, func() bool { return n.gate.Received() >= expected })
	n.unlockAndFlush()

	return err
}

// onJoin handles a JOIN. When both ends proposed the same edge, the larger
// endpoint becomes the new leader; otherwise the sender becomes a tree
// neighbor from the next level on.
func (n *Node) onJoin(m Message) {
	if m.Payload.IsEmpty() {
		return
	}
	e := m.Payload.Edge
	if e == nil || !e.Has(n.id) || e.Other(n.id) != m.From {
		n.dropLocked(m, DropUnexpected)
		return
	}
	if n.hasGlobal && core.Compare(n.mwoe, e) == 0 {
		n.newComponentID = max(e.Low, e.High)
		return
	}
	n.tree.Stage(m.From, *e)
}

// updateTree closes the level: staged edges join the tree, the level
// advances and the node either leads the merged component or waits for the
// next SEARCH to learn its leader.
func (n *Node) updateTree() {
	n.mu.Lock()
	added := n.tree.Commit()
	for _, e := range added {
		n.cand.Remove(e)
	}
	level := n.gate.Level()
	n.componentID = noComponent
	if n.newComponentID == n.id {
		n.componentID = n.id
	}
	n.resetLevelLocked()
	n.gate.Begin(level+1, PhaseInit, RoundAny)
	n.cfg.observer.LevelCompleted(n.id, level)
	n.log.Info("level completed",
		slog.Int("level", level),
		slog.Any("new_tree_edges", added),
		slog.Bool("leader", n.componentID == n.id))
	n.drainLocked()
	n.cond.Broadcast()
	n.unlockAndFlush()
}

// terminateLocked marks the node done and forwards TERMINATE to every tree
// neighbor except from.
func (n *Node) terminateLocked(from int) {
	n.terminated = true
	for _, nb := range n.tree.Neighbors() {
		if nb != from {
			n.queueLocked(ActionTerminate, nb, Payload{})
		}
	}
	for _, m := range n.gate.Discard() {
		n.cfg.observer.MessageDropped(n.id, m, DropStale)
	}
	n.cfg.observer.Terminated(n.id, n.gate.Level())
	n.cond.Broadcast()
}

func (n *Node) onTerminate(m Message) {
	if n.terminated {
		return
	}
	n.terminateLocked(m.From)
}
