// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// cmd_node.go - the node subcommand: one process over tcp or mqtt.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/synchghs/config"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/sim"
	"github.com/katalvlaran/synchghs/transport/mqtt"
	"github.com/katalvlaran/synchghs/transport/tcp"
)

const defaultRunID = "default"

type nodeFlags struct {
	configPath string
	id         int
	reportPath string
	linger     time.Duration
}

func newNodeCmd(g *globalFlags) *cobra.Command {
	f := &nodeFlags{}
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Run one GHS process",
		Long: `Run one node of a network described by a topology file.

The node links to its neighbors over the configured transport (tcp or mqtt),
runs the protocol to completion and prints its share of the tree as YAML.

Examples:
  ghs node --config topo.txt --id 1
  ghs node --config topo.yaml --id 4 --report node4.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNode(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "topology file (.txt or .yaml)")
	cmd.Flags().IntVar(&f.id, "id", -1, "this node's ID")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "write the result to this file instead of stdout")
	cmd.Flags().DurationVar(&f.linger, "linger", time.Second,
		"keep links open this long after terminating so neighbors can finish")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// closer is a transport that must be shut down after the run.
type closer interface {
	ghs.Transport
	Close()
}

// tcpCloser drops the error of tcp.Transport.Close, which is logged instead.
type tcpCloser struct {
	*tcp.Transport
	log *slog.Logger
}

func (c tcpCloser) Close() {
	if err := c.Transport.Close(); err != nil {
		c.log.Warn("closing links", slog.Any("error", err))
	}
}

func runNode(ctx context.Context, g *globalFlags, f *nodeFlags, stdout, stderr io.Writer) error {
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
	edges, err := topo.NeighborEdges(f.id)
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

	obs, stopMetrics, err := startMetrics(ctx, topo.MetricsAddr, log)
	if err != nil {
		return err
	}
	defer stopMetrics()
	stopTracing, err := startTracing(g.trace, stderr, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	node, err := ghs.NewNode(f.id, topo.Size(), edges, tr,
		ghs.WithLogger(log),
		ghs.WithObserver(obs),
		ghs.WithStartDelay(topo.StartDelay))
	if err != nil {
		return err
	}
	res, err := node.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeReport(f.reportPath, stdout, res); err != nil {
		return err
	}
	if f.linger > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.linger):
		}
	}

	return nil
}

// openTransport connects self to its peers as the topology's transport says.
func openTransport(topo *config.Topology, self config.Node, peers []config.Node, log *slog.Logger) (closer, error) {
	switch topo.Transport {
	case config.TransportTCP:
		ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(self.Port)))
		if err != nil {
			return nil, fmt.Errorf("listen on port %d: %w", self.Port, err)
		}
		addrs := make(map[int]string, len(peers))
		for _, p := range peers {
			addrs[p.ID] = p.Addr()
		}
		tr := tcp.New(self.ID, ln, addrs, tcp.WithDialTimeout(topo.DialTimeout), tcp.WithLogger(log))

		return tcpCloser{Transport: tr, log: log}, nil

	case config.TransportMQTT:
		run := topo.RunID
		if run == "" {
			run = defaultRunID
		}
		c, err := mqtt.Connect(mqtt.ClientOptions{
			BrokerURL: topo.Broker,
			ClientID:  fmt.Sprintf("ghs-%s-%d-%s", run, self.ID, uuid.NewString()[:8]),
			Will:      mqtt.PresenceWill(run, self.ID),
			Timeout:   topo.DialTimeout,
		})
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(peers))
		for _, p := range peers {
			ids = append(ids, p.ID)
		}
		tr, err := mqtt.New(c, run, self.ID, ids, log)
		if err != nil {
			c.Close()
			return nil, err
		}

		return tr, nil

	default:
		return nil, fmt.Errorf("transport %q runs only under simulate: %w", topo.Transport, config.ErrUnknownTransport)
	}
}

func writeReport(path string, stdout io.Writer, res ghs.Result) error {
	if path == "" {
		return sim.WriteResult(stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report file: %w", err)
	}
	if err := sim.WriteResult(f, res); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
