// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// cmd_simulate.go - the simulate subcommand: a whole network in-process.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/config"
	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/prim_kruskal"
	"github.com/katalvlaran/synchghs/sim"
)

var errNoTopology = errors.New("either --config or --shape is required")

type simulateFlags struct {
	configPath string
	shape      string
	n          int
	seed       int64
	shuffle    bool
	jitter     time.Duration
	method     string
	timeout    time.Duration
	reportPath string
}

func newSimulateCmd(g *globalFlags) *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a whole network in this process and verify the tree",
		Long: `Run one node per vertex over an in-process network, then check that
the nodes agree on a single tree and that it equals the sequential MST.

The network comes from a topology file or from a generated shape
(path, cycle, star, complete, random).

Examples:
  ghs simulate --config topo.txt
  ghs simulate --shape random --n 50 --seed 7 --jitter 1ms
  ghs simulate --shape cycle --n 8 --method prim --metrics-addr :9100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "topology file (.txt or .yaml)")
	cmd.Flags().StringVar(&f.shape, "shape", "", "generated topology: path, cycle, star, complete or random")
	cmd.Flags().IntVar(&f.n, "n", 8, "node count for --shape")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed for --shape and --jitter")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", true, "assign generated weights in random order")
	cmd.Flags().DurationVar(&f.jitter, "jitter", 0, "random per-frame delivery delay up to this value")
	cmd.Flags().StringVar(&f.method, "method", prim_kruskal.MethodKruskal, "reference MST: kruskal or prim")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Minute, "abort the run after this long")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "also write every node's result to this file")
	cmd.MarkFlagsMutuallyExclusive("config", "shape")

	return cmd
}

func runSimulate(ctx context.Context, gf *globalFlags, f *simulateFlags, stdout, stderr io.Writer) error {
	graph, settings, err := resolveGraph(f.configPath, f.shape, f.n, f.seed, f.shuffle)
	if err != nil {
		return err
	}
	gf.apply(&settings)

	log, err := newLogger(stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	obs, stopMetrics, err := startMetrics(ctx, settings.MetricsAddr, log)
	if err != nil {
		return err
	}
	defer stopMetrics()
	stopTracing, err := startTracing(gf.trace, stderr, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	opts := []sim.Option{
		sim.WithLogger(log),
		sim.WithNodeOptions(ghs.WithObserver(obs), ghs.WithStartDelay(settings.StartDelay)),
	}
	if f.jitter > 0 {
		opts = append(opts, sim.WithJitter(f.jitter, f.seed))
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	rep, err := sim.Run(ctx, graph, opts...)
	if err != nil {
		return err
	}

	mst := prim_kruskal.NewOptions(prim_kruskal.WithMethod(f.method), prim_kruskal.WithRoot(rep.Leader))
	if err := sim.Verify(graph, rep, mst); err != nil {
		return err
	}
	log.Info("tree verified", slog.String("method", f.method))

	if f.reportPath != "" {
		if err := writeReports(f.reportPath, rep.Results); err != nil {
			return err
		}
	}
	printSummary(stdout, rep)

	return nil
}

// resolveGraph loads the topology file at configPath or, failing that,
// generates shape with n nodes. Settings stay zero for generated shapes.
func resolveGraph(configPath, shape string, n int, seed int64, shuffle bool) (*core.Graph, config.Settings, error) {
	switch {
	case configPath != "":
		topo, err := config.Load(configPath)
		if err != nil {
			return nil, config.Settings{}, err
		}
		g, err := topo.Graph()

		return g, topo.Settings, err
	case shape != "":
		ctor, err := builder.Shape(shape, n)
		if err != nil {
			return nil, config.Settings{}, err
		}
		opts := []builder.BuilderOption{builder.WithSeed(seed)}
		if shuffle {
			opts = append(opts, builder.WithShuffledWeights())
		}
		g, err := builder.BuildGraph(opts, ctor)

		return g, config.Settings{}, err
	default:
		return nil, config.Settings{}, errNoTopology
	}
}

func printSummary(w io.Writer, rep *sim.Report) {
	fmt.Fprintf(w, "nodes:   %d\n", len(rep.Results))
	fmt.Fprintf(w, "leader:  %d\n", rep.Leader)
	fmt.Fprintf(w, "level:   %d\n", rep.Level)
	fmt.Fprintf(w, "height:  %d\n", rep.Height)
	fmt.Fprintf(w, "weight:  %d\n", rep.Weight)
	fmt.Fprintf(w, "frames:  %d\n", rep.Frames)
	fmt.Fprintf(w, "elapsed: %s\n", rep.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "tree:")
	for _, e := range rep.Tree {
		fmt.Fprintf(w, "  (%d,%d) %d\n", e.Low, e.High, e.Weight)
	}
}
