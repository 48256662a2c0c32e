// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// node.go - the Node: state, Run, Deliver and the outbox.
//
// Concurrency mirrors ghs.Node: one mutex with a sync.Cond, the driver
// blocks in waitLocked, Deliver runs on transport goroutines, and frames are
// sent outside mu under sendMu so per-link order holds.

package floodmax

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/katalvlaran/synchghs/ghs"
)

// NoParent is the Parent of the leader and of a node not yet in the tree.
const NoParent = -1

// Result is what a node knows after END.
type Result struct {
	ID        int
	Leader    int   // largest ID in the network
	Distance  int   // hops to Leader, learnt while electing
	Parent    int   // NoParent for the leader
	Children  []int // sorted
	Depth     int   // tree depth, learnt while building
	MaxDegree int   // largest tree degree of any node
}

// Node runs leader election and tree construction for one process.
type Node struct {
	id    int
	size  int
	nbIDs []int // sorted
	tr    ghs.Transport
	cfg   nodeConfig
	log   *slog.Logger

	sendMu sync.Mutex

	mu   sync.Mutex
	cond *sync.Cond
	gate *gate

	largest       int
	dist          int
	marked        bool
	markRound     int
	parent        int
	pendingSearch bool
	children      []int
	degree        int // max over this node's subtree
	maxDegree     int
	done          bool
	running       bool
	sendErr       error
	outbox        []Message
}

// NewNode builds the node id of a size-node network with the given
// neighbors and registers it as tr's receiver.
func NewNode(id, size int, neighbors []int, tr ghs.Transport, opts ...Option) (*Node, error) {
	if tr == nil {
		return nil, ErrNilTransport
	}
	if size < 1 || len(neighbors) > size-1 {
		return nil, fmt.Errorf("NewNode(%d): size=%d with %d neighbors: %w", id, size, len(neighbors), ErrBadNodeCount)
	}
	ids := slices.Clone(neighbors)
	slices.Sort(ids)
	for i, nb := range ids {
		if nb == id || (i > 0 && ids[i-1] == nb) {
			return nil, fmt.Errorf("NewNode(%d): neighbor %d: %w", id, nb, ErrBadNeighbor)
		}
	}

	cfg := newNodeConfig(opts...)
	n := &Node{
		id:      id,
		size:    size,
		nbIDs:   ids,
		tr:      tr,
		cfg:     cfg,
		log:     cfg.logger.With(slog.Int("node", id)),
		gate:    newGate(),
		largest: id,
		parent:  NoParent,
	}
	n.cond = sync.NewCond(&n.mu)
	tr.Listen(n.Deliver)

	return n, nil
}

// ID returns the node's identifier.
func (n *Node) ID() int { return n.id }

// Result returns the node's current view. It is final once Run has
// returned without error.
func (n *Node) Result() Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.resultLocked()
}

func (n *Node) resultLocked() Result {
	depth := 0
	if n.marked && n.parent != NoParent {
		depth = n.markRound - n.size + 1
	}

	return Result{
		ID:        n.id,
		Leader:    n.largest,
		Distance:  n.dist,
		Parent:    n.parent,
		Children:  slices.Clone(n.children),
		Depth:     depth,
		MaxDegree: n.maxDegree,
	}
}

// Run waits for the transport, then drives the five stages. Cancelling ctx
// aborts the run.
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

	if err := n.runStages(ctx); err != nil {
		n.log.Error("run aborted", slog.Any("error", err))
		return n.Result(), err
	}
	res := n.Result()
	n.log.Info("tree built",
		slog.Int("leader", res.Leader),
		slog.Int("parent", res.Parent),
		slog.Int("depth", res.Depth),
		slog.Any("children", res.Children),
		slog.Int("max_degree", res.MaxDegree))

	return res, nil
}

func (n *Node) wake() {
	n.mu.Lock()
	n.cond.Broadcast()
	n.mu.Unlock()
}

// Deliver is the transport's receive callback.
func (n *Node) Deliver(data []byte) {
	m, err := Decode(data)
	if err != nil {
		n.log.Error("malformed message", slog.String("frame", string(data)), slog.Any("error", err))
		return
	}

	n.mu.Lock()
	if _, isPeer := slices.BinarySearch(n.nbIDs, m.From); m.To != n.id || !isPeer {
		n.dropLocked(m, ghs.DropMisrouted)
		n.mu.Unlock()
		return
	}
	switch n.gate.admit(m) {
	case ghs.VerdictDue:
		n.processLocked(m)
	case ghs.VerdictStale:
		n.dropLocked(m, ghs.DropStale)
	}
	n.drainLocked()
	n.cond.Broadcast()
	n.unlockAndFlush()
}

func (n *Node) drainLocked() {
	for {
		m, v, ok := n.gate.next()
		if !ok {
			return
		}
		if v == ghs.VerdictDue {
			n.processLocked(m)
		} else {
			n.dropLocked(m, ghs.DropStale)
		}
	}
}

func (n *Node) dropLocked(m Message, reason string) {
	n.log.Warn("lost/unexpected message",
		slog.String("reason", reason),
		slog.String("msg", m.String()),
		slog.String("stage", n.gate.stage.String()),
		slog.Int("round", n.gate.round))
}

func (n *Node) processLocked(m Message) {
	n.log.Debug("processing", slog.String("msg", m.String()))
	switch m.Action {
	case ActionElect:
		n.onElect(m)
	case ActionBuild:
		n.onBuild(m)
	case ActionReply:
		n.onReply(m)
	case ActionDegree:
		n.onDegree(m)
	case ActionEnd:
		n.onEnd(m)
	}
}

// queueLocked appends a message from this node to the outbox.
func (n *Node) queueLocked(m Message) {
	m.From = n.id
	m.Round = roundOf(m.Action, n.gate.round)
	n.outbox = append(n.outbox, m)
}

// unlockAndFlush releases mu and sends everything queued so far.
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

// waitLocked blocks until ready() holds, a send fails or ctx is done.
func (n *Node) waitLocked(ctx context.Context, ready func() bool) error {
	for {
		switch {
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
