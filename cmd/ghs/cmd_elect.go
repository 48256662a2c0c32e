// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// cmd_elect.go - the elect subcommand: FloodMax leader election, a BFS tree
// from the leader and the tree's maximum degree.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/synchghs/config"
	"github.com/katalvlaran/synchghs/floodmax"
	"github.com/katalvlaran/synchghs/sim"
)

type electFlags struct {
	configPath string
	shape      string
	n          int
	seed       int64
	id         int
	jitter     time.Duration
	timeout    time.Duration
}

func newElectCmd(g *globalFlags) *cobra.Command {
	f := &electFlags{}
	cmd := &cobra.Command{
		Use:   "elect",
		Short: "Elect the largest ID and build a BFS tree from it",
		Long: `Run FloodMax leader election, grow a BFS tree from the leader and
report the tree's maximum degree.

Without --id the whole network runs in this process and the outcome is
checked against a sequential BFS. With --id one node runs over the
topology's tcp or mqtt transport and prints its result as YAML.

Examples:
  ghs elect --shape random --n 30 --seed 4
  ghs elect --config topo.txt --id 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.id >= 0 {
				return runElectNode(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			return runElect(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "topology file (.txt or .yaml)")
	cmd.Flags().StringVar(&f.shape, "shape", "", "generated topology: path, cycle, star, complete or random")
	cmd.Flags().IntVar(&f.n, "n", 8, "node count for --shape")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed for --shape and --jitter")
	cmd.Flags().IntVar(&f.id, "id", -1, "run only this node of --config over its transport")
	cmd.Flags().DurationVar(&f.jitter, "jitter", 0, "random per-frame delivery delay up to this value")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Minute, "abort the run after this long")
	cmd.MarkFlagsMutuallyExclusive("config", "shape")
	cmd.MarkFlagsMutuallyExclusive("id", "shape")

	return cmd
}

func runElect(ctx context.Context, gf *globalFlags, f *electFlags, stdout, stderr io.Writer) error {
	graph, settings, err := resolveGraph(f.configPath, f.shape, f.n, f.seed, false)
	if err != nil {
		return err
	}
	gf.apply(&settings)

	log, err := newLogger(stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	stopTracing, err := startTracing(gf.trace, stderr, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	opts := []sim.ElectOption{
		sim.WithElectLogger(log),
		sim.WithElectNodeOptions(floodmax.WithStartDelay(settings.StartDelay)),
	}
	if f.jitter > 0 {
		opts = append(opts, sim.WithElectJitter(f.jitter, f.seed))
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	rep, err := sim.Elect(ctx, graph, opts...)
	if err != nil {
		return err
	}
	if err := sim.VerifyElection(graph, rep); err != nil {
		return err
	}
	log.Info("election verified", slog.Int("leader", rep.Leader))
	printElectSummary(stdout, rep)

	return nil
}

// electResult is the YAML shape of one floodmax.Result.
type electResult struct {
	Node      int   `yaml:"node"`
	Leader    int   `yaml:"leader"`
	Distance  int   `yaml:"distance"`
	Parent    int   `yaml:"parent"`
	Children  []int `yaml:"children,flow"`
	Depth     int   `yaml:"depth"`
	MaxDegree int   `yaml:"max_degree"`
}

func runElectNode(ctx context.Context, g *globalFlags, f *electFlags, stdout, stderr io.Writer) error {
	if f.configPath == "" {
		return errNoTopology
	}
	topo, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	g.apply(&topo.Settings)
	log, err := newLogger(stderr, topo.LogLevel, topo.LogFormat)
	if err != nil {
		return err
	}
	log = log.With(slog.Int("node", f.id))

	self, err := topo.Node(f.id)
	if err != nil {
		return err
	}
	peers, err := topo.Peers(f.id)
	if err != nil {
		return err
	}
	tr, err := openTransport(topo, self, peers, log)
	if err != nil {
		return err
	}
	defer tr.Close()

	stopTracing, err := startTracing(g.trace, stderr, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	ids := make([]int, 0, len(peers))
	for _, p := range peers {
		ids = append(ids, p.ID)
	}
	node, err := floodmax.NewNode(f.id, topo.Size(), ids, tr,
		floodmax.WithLogger(log),
		floodmax.WithStartDelay(topo.StartDelay))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	res, err := node.Run(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(stdout)
	if err := enc.Encode(electResult{
		Node:      res.ID,
		Leader:    res.Leader,
		Distance:  res.Distance,
		Parent:    res.Parent,
		Children:  res.Children,
		Depth:     res.Depth,
		MaxDegree: res.MaxDegree,
	}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return enc.Close()
}

func printElectSummary(w io.Writer, rep *sim.ElectReport) {
	fmt.Fprintf(w, "nodes:      %d\n", len(rep.Results))
	fmt.Fprintf(w, "leader:     %d\n", rep.Leader)
	fmt.Fprintf(w, "height:     %d\n", rep.Height)
	fmt.Fprintf(w, "max degree: %d\n", rep.MaxDegree)
	fmt.Fprintf(w, "frames:     %d\n", rep.Frames)
	fmt.Fprintf(w, "elapsed:    %s\n", rep.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "tree:")
	for _, r := range rep.Results {
		if r.Parent != floodmax.NoParent {
			fmt.Fprintf(w, "  %d -> %d\n", r.ID, r.Parent)
		}
	}
}
