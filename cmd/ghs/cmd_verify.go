// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// cmd_verify.go - the verify subcommand: check collected node reports.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/synchghs/config"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/prim_kruskal"
	"github.com/katalvlaran/synchghs/sim"
)

func newVerifyCmd(_ *globalFlags) *cobra.Command {
	var (
		configPath string
		method     string
	)
	cmd := &cobra.Command{
		Use:   "verify REPORT...",
		Short: "Check node reports against the sequential MST",
		Long: `Read the YAML results written by 'ghs node' (one or more documents per
file), check that they describe one tree, and compare it with the MST of the
topology.

Example:
  ghs verify --config topo.txt node1.yaml node2.yaml node3.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(configPath, method, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "topology file (.txt or .yaml)")
	cmd.Flags().StringVar(&method, "method", prim_kruskal.MethodKruskal, "reference MST: kruskal or prim")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runVerify(configPath, method string, reports []string, stdout io.Writer) error {
	topo, err := config.Load(configPath)
	if err != nil {
		return err
	}
	graph, err := topo.Graph()
	if err != nil {
		return err
	}

	var results []ghs.Result
	for _, path := range reports {
		rs, err := readReports(path)
		if err != nil {
			return err
		}
		results = append(results, rs...)
	}
	rep, err := sim.Aggregate(results)
	if err != nil {
		return err
	}
	mst := prim_kruskal.NewOptions(prim_kruskal.WithMethod(method), prim_kruskal.WithRoot(rep.Leader))
	if err := sim.Verify(graph, rep, mst); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "OK: %d nodes agree on leader %d, tree weight %d matches %s\n",
		len(rep.Results), rep.Leader, rep.Weight, method)

	return nil
}

func readReports(path string) ([]ghs.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report file: %w", err)
	}
	defer f.Close()

	return sim.ReadResults(f)
}

func writeReports(path string, results []ghs.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report file: %w", err)
	}
	for _, r := range results {
		if err := sim.WriteResult(f, r); err != nil {
			f.Close()
			return err
		}
	}

	return f.Close()
}
