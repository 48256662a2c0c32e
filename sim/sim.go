// SPDX-License-Identifier: MIT
// Package: synchghs/sim
//
// sim.go - run every node of a graph in one process over the memory
// transport and aggregate their views.

// Package sim runs a whole GHS network in-process and checks the outcome
// against a sequential MST. It backs the simulate and verify commands.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/synchghs/bfs"
	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/transport/memory"
)

// Report is the network-wide outcome of a run.
type Report struct {
	Results []ghs.Result // one per node, sorted by ID
	Tree    []core.Edge  // union of the nodes' tree edges, sorted by core.Compare
	Weight  int64
	Leader  int
	Level   int
	Height  int   // tree depth below the leader
	Frames  int64 // frames delivered by the network
	Elapsed time.Duration
}

type simConfig struct {
	logger   *slog.Logger
	nodeOpts []ghs.Option
	netOpts  []memory.Option
}

// Option configures Run.
type Option func(*simConfig)

// WithLogger sets the logger handed to every node.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("sim: WithLogger(nil)")
	}
	return func(c *simConfig) { c.logger = l }
}

// WithNodeOptions appends engine options applied to every node.
func WithNodeOptions(opts ...ghs.Option) Option {
	return func(c *simConfig) { c.nodeOpts = append(c.nodeOpts, opts...) }
}

// WithJitter randomizes delivery timing; see memory.WithJitter.
func WithJitter(max time.Duration, seed int64) Option {
	return func(c *simConfig) { c.netOpts = append(c.netOpts, memory.WithJitter(max, seed)) }
}

// Run starts one node per vertex of g and waits for all of them. The first
// node error cancels the rest.
func Run(ctx context.Context, g *core.Graph, opts ...Option) (*Report, error) {
	cfg := simConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if g.VertexCount() == 0 {
		return nil, fmt.Errorf("Run: %w", ErrEmptyGraph)
	}

	net := memory.NewNetwork(cfg.netOpts...)
	defer net.Close()

	size := g.VertexCount()
	nodeOpts := append([]ghs.Option{ghs.WithLogger(cfg.logger)}, cfg.nodeOpts...)
	nodes := make([]*ghs.Node, 0, size)
	for _, id := range g.Vertices() {
		edges, err := g.Neighbors(id)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		peers, err := g.NeighborIDs(id)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		n, err := ghs.NewNode(id, size, edges, net.Endpoint(id, peers), nodeOpts...)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		nodes = append(nodes, n)
	}

	cfg.logger.Info("simulation starting", slog.Int("nodes", size), slog.Int("edges", g.EdgeCount()))
	start := time.Now()
	eg, ectx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	results := make([]ghs.Result, 0, size)
	for _, n := range nodes {
		n := n
		eg.Go(func() error {
			res, err := n.Run(ectx)
			if err != nil {
				return fmt.Errorf("node %d: %w", n.ID(), err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	rep, err := Aggregate(results)
	if err != nil {
		return nil, err
	}
	rep.Elapsed = time.Since(start)
	rep.Frames = net.Delivered()
	cfg.logger.Info("simulation finished",
		slog.Int("leader", rep.Leader),
		slog.Int("level", rep.Level),
		slog.Int64("weight", rep.Weight),
		slog.Duration("elapsed", rep.Elapsed))

	return rep, nil
}

// Aggregate merges per-node results into one Report. Every node must name
// the same leader, and every tree edge must be known to both endpoints.
func Aggregate(results []ghs.Result) (*Report, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("Aggregate: %w", ErrEmptyGraph)
	}
	sorted := append([]ghs.Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rep := &Report{Results: sorted, Leader: sorted[0].ComponentID, Level: sorted[0].Level}
	seen := make(map[core.Edge]int)
	for _, r := range sorted {
		if r.ComponentID != rep.Leader {
			return nil, fmt.Errorf("Aggregate: node %d follows %d, node %d follows %d: %w",
				sorted[0].ID, rep.Leader, r.ID, r.ComponentID, ErrDisagreement)
		}
		if r.Level > rep.Level {
			rep.Level = r.Level
		}
		for _, e := range r.TreeEdges {
			if !e.Has(r.ID) {
				return nil, fmt.Errorf("Aggregate: node %d reports %s: %w", r.ID, e, ErrDisagreement)
			}
			seen[e]++
		}
	}
	for e, c := range seen {
		if c != 2 {
			return nil, fmt.Errorf("Aggregate: edge %s known to %d endpoint(s): %w", e, c, ErrDisagreement)
		}
		rep.Tree = append(rep.Tree, e)
		rep.Weight += e.Weight
	}
	sort.Slice(rep.Tree, func(i, j int) bool { return rep.Tree[i].Less(rep.Tree[j]) })

	height, err := treeHeight(rep)
	if err != nil {
		return nil, err
	}
	rep.Height = height

	return rep, nil
}

// treeHeight walks rep.Tree from the leader. The tree must be acyclic and
// reach every reporting node.
func treeHeight(rep *Report) (int, error) {
	if len(rep.Tree) != len(rep.Results)-1 {
		return 0, fmt.Errorf("Aggregate: %d tree edges for %d nodes: %w", len(rep.Tree), len(rep.Results), ErrDisagreement)
	}
	tree := core.NewGraph()
	for _, r := range rep.Results {
		if err := tree.AddVertex(r.ID); err != nil {
			return 0, fmt.Errorf("Aggregate: %w", err)
		}
	}
	for _, e := range rep.Tree {
		if _, err := tree.AddEdge(e.Low, e.High, e.Weight); err != nil {
			return 0, fmt.Errorf("Aggregate: %w", err)
		}
	}
	res, err := bfs.BFS(tree, rep.Leader)
	if err != nil {
		return 0, fmt.Errorf("Aggregate: leader %d: %v: %w", rep.Leader, err, ErrDisagreement)
	}
	for _, r := range rep.Results {
		if !res.Reached(r.ID) {
			return 0, fmt.Errorf("Aggregate: node %d not connected to leader %d: %w", r.ID, rep.Leader, ErrDisagreement)
		}
	}

	return res.Height(), nil
}
