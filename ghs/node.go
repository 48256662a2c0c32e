// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// node.go - the per-node engine: state, lifecycle and message intake.
//
// Concurrency:
//   - One driver goroutine (Run) walks the phases; transport goroutines call
//     Deliver. All protocol state is guarded by mu.
//   - The driver blocks on cond; every state change Broadcasts.
//   - Outgoing messages are queued under mu and flushed after it is released.
//     sendMu is taken before mu is released, so flushes leave in queue order
//     and per-link FIFO holds across goroutines.

package ghs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/synchghs/core"
)

// noComponent is the component ID of a node waiting for SEARCH to tell it
// who its new leader is.
const noComponent = -1

// Transport moves encoded frames between nodes. Frames on one link arrive in
// send order.
type Transport interface {
	// Listen registers the receive callback. NewNode calls it once.
	Listen(onReceive func(data []byte))
	// Ready blocks until every expected inbound link is established.
	Ready(ctx context.Context) error
	// Send hands data to the link toward node to. It must not wait for the peer.
	Send(to int, data []byte) error
}

// Result is what a node knows once it has terminated.
type Result struct {
	ID          int
	ComponentID int
	Level       int
	TreeEdges   []core.Edge // this node's incident share of the MST
}

// Node runs the synchronous GHS protocol for one process.
type Node struct {
	id        int
	size      int               // N, the network's node count
	neighbors map[int]core.Edge // neighbor -> incident edge
	nbIDs     []int             // sorted neighbor IDs
	tr        Transport
	cfg       nodeConfig
	log       *slog.Logger

	sendMu sync.Mutex

	mu   sync.Mutex
	cond *sync.Cond
	gate *Synchronizer
	tree *Tree
	cand *Candidates

	componentID    int
	newComponentID int
	parent         int
	mwoe           *core.Edge // component-wide choice as far as this node knows
	local          *core.Edge // this node's own accepted outgoing edge
	testing        *core.Edge // edge whose REPLY is outstanding
	hasGlobal      bool       // endpoint of the level's chosen merge edge
	pendingSearch  bool
	pendingMerge   bool
	gotMerge       bool
	children       int
	childMsgs      int
	converged      bool
	convergeSent   bool
	terminated     bool
	running        bool
	sendErr        error
	outbox         []Message
}

// NewNode builds the engine for node id in a network of size nodes. edges
// are the node's incident links. The node registers itself as the
// transport's receiver immediately, so frames may arrive before Run.
func NewNode(id, size int, edges []core.Edge, tr Transport, opts ...Option) (*Node, error) {
	if tr == nil {
		return nil, ErrNilTransport
	}
	if size < 1 || len(edges) > size-1 {
		return nil, fmt.Errorf("NewNode(%d): size=%d with %d neighbors: %w", id, size, len(edges), ErrBadNodeCount)
	}
	nbs := make(map[int]core.Edge, len(edges))
	ids := make([]int, 0, len(edges))
	for _, e := range edges {
		if !e.Has(id) || e.Low == e.High {
			return nil, fmt.Errorf("NewNode(%d): edge %s: %w", id, e, ErrNotIncident)
		}
		nb := e.Other(id)
		if _, dup := nbs[nb]; dup {
			return nil, fmt.Errorf("NewNode(%d): neighbor %d: %w", id, nb, ErrDuplicateNeighbor)
		}
		nbs[nb] = e
		ids = append(ids, nb)
	}
	sort.Ints(ids)

	cfg := newNodeConfig(opts...)
	n := &Node{
		id:        id,
		size:      size,
		neighbors: nbs,
		nbIDs:     ids,
		tr:        tr,
		cfg:       cfg,
		log:       cfg.logger.With(slog.Int("node", id)),
	}
	n.cond = sync.NewCond(&n.mu)
	n.initBuildMST()
	tr.Listen(n.Deliver)

	return n, nil
}

// initBuildMST puts the node at level 0 as the leader of its own component
// with every incident edge as a candidate.
func (n *Node) initBuildMST() {
	edges := make([]core.Edge, 0, len(n.neighbors))
	for _, e := range n.neighbors {
		edges = append(edges, e)
	}
	n.gate = NewSynchronizer()
	n.tree = NewTree()
	n.cand = NewCandidates(edges)
	n.componentID = n.id
	n.resetLevelLocked()
}

// resetLevelLocked clears the per-level transient fields.
func (n *Node) resetLevelLocked() {
	n.newComponentID = noComponent
	n.parent = noPeer
	n.mwoe, n.local, n.testing = nil, nil, nil
	n.hasGlobal, n.pendingSearch, n.pendingMerge, n.gotMerge = false, false, false, false
	n.children, n.childMsgs = 0, 0
	n.converged, n.convergeSent = false, false
}

// ID returns the node's ID.
func (n *Node) ID() int { return n.id }

// Result returns the node's current view: component, level and incident
// tree edges. It is final once Run has returned without error.
func (n *Node) Result() Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	return Result{
		ID:          n.id,
		ComponentID: n.componentID,
		Level:       n.gate.Level(),
		TreeEdges:   n.tree.Edges(),
	}
}

// Run waits for the transport, then drives levels until TERMINATE. It
// returns the final Result. Cancelling ctx aborts the run.
func (n *Node) Run(ctx context.Context) (Result, error) {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return Result{}, fmt.Errorf("Run(%d): %w", n.id, ErrAlreadyRunning)
	}
	n.running = true
	n.mu.Unlock()

	if err := n.tr.Ready(ctx); err != nil {
		return n.Result(), fmt.Errorf("Run(%d): transport not ready: %w", n.id, err)
	}
	if d := n.cfg.startDelay; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return n.Result(), ctx.Err()
		case <-t.C:
		}
	}
	stop := context.AfterFunc(ctx, n.wake)
	defer stop()

	n.log.Info("building MST", slog.Int("nodes", n.size), slog.Int("neighbors", len(n.nbIDs)))
	for {
		err := n.runLevel(ctx)
		switch {
		case errors.Is(err, errTerminated):
			res := n.Result()
			n.log.Info("terminated",
				slog.Int("component", res.ComponentID),
				slog.Int("level", res.Level),
				slog.Any("tree_edges", res.TreeEdges))
			return res, nil
		case err != nil:
			n.log.Error("run aborted", slog.Any("error", err))
			return n.Result(), err
		}
	}
}

// runLevel executes one component level inside a tracing span.
func (n *Node) runLevel(ctx context.Context) error {
	n.mu.Lock()
	level := n.gate.Level()
	n.mu.Unlock()

	attrs := trace.WithAttributes(
		attribute.Int("ghs.node", n.id),
		attribute.Int("ghs.level", level),
	)
	ctx, span := n.cfg.tracer.Start(ctx, "ghs.level", attrs)
	defer span.End()

	steps := []struct {
		phase Phase
		run   func(context.Context) error
	}{
		{PhaseSearch, n.search},
		{PhaseTest, n.test},
		{PhaseConverge, n.converge},
		{PhaseMerge, n.merge},
		{PhaseJoin, n.join},
	}
	for _, st := range steps {
		pctx, pspan := n.cfg.tracer.Start(ctx, "ghs."+strings.ToLower(st.phase.String()), attrs)
		start := time.Now()
		err := st.run(pctx)

		n.mu.Lock()
		n.cfg.observer.PhaseCompleted(n.id, level, st.phase, time.Since(start))
		n.mu.Unlock()
		if err != nil && !errors.Is(err, errTerminated) {
			pspan.RecordError(err)
		}
		pspan.End()
		if err != nil {
			return err
		}
	}
	n.updateTree()

	return nil
}

// wake unblocks the driver so it can observe cancellation.
func (n *Node) wake() {
	n.mu.Lock()
	n.cond.Broadcast()
	n.mu.Unlock()
}

// Deliver is the transport's receive callback: decode, gate, process, drain.
func (n *Node) Deliver(data []byte) {
	m, err := Decode(data)
	if err != nil {
		n.log.Error("malformed message", slog.String("frame", string(data)), slog.Any("error", err))
		n.mu.Lock()
		n.cfg.observer.MessageDropped(n.id, Message{}, DropMalformed)
		n.mu.Unlock()
		return
	}

	n.mu.Lock()
	n.cfg.observer.MessageReceived(n.id, m)
	switch {
	case m.To != n.id:
		n.log.Warn("lost/unexpected message: wrong destination", slog.String("msg", m.String()))
		n.cfg.observer.MessageDropped(n.id, m, DropMisrouted)
		n.mu.Unlock()
		return
	case m.Action == ActionConnect, m.Action == ActionDisconnect:
		n.log.Debug("link control", slog.String("msg", m.String()))
		n.mu.Unlock()
		return
	}

	switch n.gate.Admit(m) {
	case VerdictDue:
		n.processLocked(m)
	case VerdictDefer:
		n.cfg.observer.MessageDeferred(n.id, m)
	case VerdictStale:
		n.dropLocked(m, DropStale)
	}
	n.drainLocked()
	n.cond.Broadcast()
	n.unlockAndFlush()
}

// drainLocked processes buffered messages that became due, one at a time and
// in buffer order, rescanning after each since processing may unblock more.
func (n *Node) drainLocked() {
	for {
		m, v, ok := n.gate.Next()
		if !ok {
			return
		}
		if v == VerdictDue {
			n.processLocked(m)
		} else {
			n.dropLocked(m, DropStale)
		}
	}
}

// dropLocked logs and reports a message that will never be processed.
func (n *Node) dropLocked(m Message, reason string) {
	n.cfg.observer.MessageDropped(n.id, m, reason)
	if n.terminated {
		n.log.Debug("dropped after termination", slog.String("msg", m.String()))
		return
	}
	n.log.Warn("lost/unexpected message",
		slog.String("reason", reason),
		slog.String("msg", m.String()),
		slog.Int("level", n.gate.Level()),
		slog.String("phase", n.gate.Phase().String()),
		slog.Int("round", n.gate.Round()))
}

// processLocked dispatches a due message to its handler.
func (n *Node) processLocked(m Message) {
	n.log.Debug("processing", slog.String("msg", m.String()))
	switch m.Action {
	case ActionSearch:
		n.onSearch(m)
	case ActionTest:
		n.onTest(m)
	case ActionReply:
		n.onReply(m)
	case ActionConverge:
		n.onConverge(m)
	case ActionMerge:
		n.onMerge(m)
	case ActionJoin:
		n.onJoin(m)
	case ActionTerminate:
		n.onTerminate(m)
	case ActionConnect, ActionDisconnect:
		// consumed in Deliver
	default:
		n.dropLocked(m, DropUnexpected)
	}
}

// queueLocked appends a message from this node to the outbox. Round-scoped
// actions carry the current round; all others carry RoundAny.
func (n *Node) queueLocked(a Action, to int, p Payload) {
	round := RoundAny
	if a.roundScoped() {
		round = n.gate.Round()
	}
	m := Message{
		Action:  a,
		Src:     n.componentID,
		From:    n.id,
		To:      to,
		Round:   round,
		Level:   n.gate.Level(),
		Payload: p,
	}
	n.outbox = append(n.outbox, m)
	n.cfg.observer.MessageSent(n.id, m)
}

// unlockAndFlush releases mu and sends everything queued so far. The first
// send failure is kept in sendErr and stops the driver.
func (n *Node) unlockAndFlush() {
	out := n.outbox
	n.outbox = nil
	if len(out) == 0 {
		n.mu.Unlock()
		return
	}
	n.sendMu.Lock()
	n.mu.Unlock()

	var sendErr error
	for _, m := range out {
		if err := n.tr.Send(m.To, m.Encode()); err != nil {
			n.log.Error("send failed", slog.String("msg", m.String()), slog.Any("error", err))
			if sendErr == nil {
				sendErr = fmt.Errorf("send %s to %d: %w", m.Action, m.To, err)
			}
		}
	}
	n.sendMu.Unlock()

	if sendErr != nil {
		n.mu.Lock()
		if n.sendErr == nil {
			n.sendErr = sendErr
		}
		n.cond.Broadcast()
		n.mu.Unlock()
	}
}

// waitLocked blocks until ready() holds, the node terminates, a send fails
// or ctx is done. mu must be held.
func (n *Node) waitLocked(ctx context.Context, ready func() bool) error {
	for {
		switch {
		case n.terminated:
			return errTerminated
		case n.sendErr != nil:
			return n.sendErr
		case ctx.Err() != nil:
			return ctx.Err()
		case ready():
			return nil
		}
		n.cond.Wait()
	}
}
