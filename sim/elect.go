// SPDX-License-Identifier: MIT
// Package: synchghs/sim
//
// elect.go - run leader election and BFS-tree construction in-process and
// check the outcome against a sequential BFS.

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/synchghs/bfs"
	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/floodmax"
	"github.com/katalvlaran/synchghs/transport/memory"
)

// ElectReport is the network-wide outcome of an election run.
type ElectReport struct {
	Results   []floodmax.Result // one per node, sorted by ID
	Leader    int
	Height    int // deepest node below the leader
	MaxDegree int
	Frames    int64
	Elapsed   time.Duration
}

type electConfig struct {
	logger   *slog.Logger
	nodeOpts []floodmax.Option
	netOpts  []memory.Option
}

// ElectOption configures Elect.
type ElectOption func(*electConfig)

// WithElectLogger sets the logger handed to every node.
func WithElectLogger(l *slog.Logger) ElectOption {
	if l == nil {
		panic("sim: WithElectLogger(nil)")
	}
	return func(c *electConfig) { c.logger = l }
}

// WithElectNodeOptions appends options applied to every floodmax node.
func WithElectNodeOptions(opts ...floodmax.Option) ElectOption {
	return func(c *electConfig) { c.nodeOpts = append(c.nodeOpts, opts...) }
}

// WithElectJitter randomizes delivery timing; see memory.WithJitter.
func WithElectJitter(max time.Duration, seed int64) ElectOption {
	return func(c *electConfig) { c.netOpts = append(c.netOpts, memory.WithJitter(max, seed)) }
}

// Elect starts one floodmax node per vertex of g and waits for all of them.
// The first node error cancels the rest.
func Elect(ctx context.Context, g *core.Graph, opts ...ElectOption) (*ElectReport, error) {
	cfg := electConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if g.VertexCount() == 0 {
		return nil, fmt.Errorf("Elect: %w", ErrEmptyGraph)
	}

	net := memory.NewNetwork(cfg.netOpts...)
	defer net.Close()

	size := g.VertexCount()
	nodeOpts := append([]floodmax.Option{floodmax.WithLogger(cfg.logger)}, cfg.nodeOpts...)
	nodes := make([]*floodmax.Node, 0, size)
	for _, id := range g.Vertices() {
		peers, err := g.NeighborIDs(id)
		if err != nil {
			return nil, fmt.Errorf("Elect: %w", err)
		}
		n, err := floodmax.NewNode(id, size, peers, net.Endpoint(id, peers), nodeOpts...)
		if err != nil {
			return nil, fmt.Errorf("Elect: %w", err)
		}
		nodes = append(nodes, n)
	}

	cfg.logger.Info("election starting", slog.Int("nodes", size), slog.Int("edges", g.EdgeCount()))
	start := time.Now()
	eg, ectx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	results := make([]floodmax.Result, 0, size)
	for _, n := range nodes {
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

	rep, err := AggregateElection(results)
	if err != nil {
		return nil, err
	}
	rep.Elapsed = time.Since(start)
	rep.Frames = net.Delivered()
	cfg.logger.Info("election finished",
		slog.Int("leader", rep.Leader),
		slog.Int("height", rep.Height),
		slog.Int("max_degree", rep.MaxDegree),
		slog.Duration("elapsed", rep.Elapsed))

	return rep, nil
}

// AggregateElection merges per-node results. Every node must name the same
// leader and maximum degree.
func AggregateElection(results []floodmax.Result) (*ElectReport, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("AggregateElection: %w", ErrEmptyGraph)
	}
	sorted := slices.Clone(results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	first := sorted[0]
	rep := &ElectReport{Results: sorted, Leader: first.Leader, MaxDegree: first.MaxDegree}
	for _, r := range sorted {
		if r.Leader != rep.Leader || r.MaxDegree != rep.MaxDegree {
			return nil, fmt.Errorf("AggregateElection: node %d says leader %d degree %d, node %d says %d %d: %w",
				first.ID, rep.Leader, rep.MaxDegree, r.ID, r.Leader, r.MaxDegree, ErrDisagreement)
		}
		rep.Height = max(rep.Height, r.Depth)
	}

	return rep, nil
}

// VerifyElection checks rep against a sequential BFS of g from the largest
// ID: distances and depths match BFS depth, each parent is the smallest
// neighbor one level up, children mirror parents and the maximum degree is
// the tree's.
func VerifyElection(g *core.Graph, rep *ElectReport) error {
	ids := g.Vertices()
	if len(ids) == 0 {
		return fmt.Errorf("VerifyElection: %w", ErrEmptyGraph)
	}
	if len(rep.Results) != len(ids) {
		return fmt.Errorf("VerifyElection: %d reports for %d nodes: %w", len(rep.Results), len(ids), ErrMismatch)
	}
	leader := slices.Max(ids)
	if rep.Leader != leader {
		return fmt.Errorf("VerifyElection: leader %d, want %d: %w", rep.Leader, leader, ErrMismatch)
	}
	want, err := bfs.BFS(g, leader)
	if err != nil {
		return fmt.Errorf("VerifyElection: %w", err)
	}

	children := make(map[int][]int, len(ids))
	for _, r := range rep.Results {
		d, ok := want.Depth[r.ID]
		if !ok {
			return fmt.Errorf("VerifyElection: node %d unreachable from %d: %w", r.ID, leader, ErrMismatch)
		}
		if r.Distance != d || r.Depth != d {
			return fmt.Errorf("VerifyElection: node %d distance %d depth %d, want %d: %w",
				r.ID, r.Distance, r.Depth, d, ErrMismatch)
		}
		parent, err := expectedParent(g, want, r.ID)
		if err != nil {
			return err
		}
		if r.Parent != parent {
			return fmt.Errorf("VerifyElection: node %d parent %d, want %d: %w", r.ID, r.Parent, parent, ErrMismatch)
		}
		if parent != floodmax.NoParent {
			children[parent] = append(children[parent], r.ID)
		}
	}

	maxDegree := 0
	for _, r := range rep.Results {
		kids := children[r.ID]
		sort.Ints(kids)
		if !slices.Equal(kids, r.Children) {
			return fmt.Errorf("VerifyElection: node %d children %v, want %v: %w", r.ID, r.Children, kids, ErrMismatch)
		}
		deg := len(kids)
		if r.Parent != floodmax.NoParent {
			deg++
		}
		maxDegree = max(maxDegree, deg)
	}
	if rep.MaxDegree != maxDegree {
		return fmt.Errorf("VerifyElection: max degree %d, want %d: %w", rep.MaxDegree, maxDegree, ErrMismatch)
	}

	return nil
}

// expectedParent is the smallest neighbor of id one BFS level closer to the
// root, or floodmax.NoParent for the root.
func expectedParent(g *core.Graph, res *bfs.BFSResult, id int) (int, error) {
	d := res.Depth[id]
	if d == 0 {
		return floodmax.NoParent, nil
	}
	nbs, err := g.NeighborIDs(id)
	if err != nil {
		return 0, fmt.Errorf("VerifyElection: %w", err)
	}
	for _, nb := range nbs { // sorted
		if nd, ok := res.Depth[nb]; ok && nd == d-1 {
			return nb, nil
		}
	}

	return 0, fmt.Errorf("VerifyElection: node %d has no neighbor at depth %d: %w", id, d-1, ErrMismatch)
}
