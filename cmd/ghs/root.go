// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// root.go - root command, global flags and logger construction.

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/synchghs/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel    string
	logFormat   string
	metricsAddr string
	trace       bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "ghs",
		Short: "Distributed minimum spanning tree with synchronous GHS",
		Long: `ghs runs the synchronous Gallager-Humblet-Spira protocol.

Every process knows only its own links and weights. Components merge along
their minimum outgoing edges level by level until one tree spans the network.

Subcommands:
  node      - run one process of a multi-process network
  simulate  - run every node of a network in this process
  verify    - aggregate node reports and compare with a sequential MST`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides the config file)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "",
		"log format: text or json (overrides the config file)")
	root.PersistentFlags().StringVar(&g.metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics at this address, e.g. :9100")
	root.PersistentFlags().BoolVar(&g.trace, "trace", false,
		"write an OpenTelemetry span per level and phase to stderr as JSON")

	root.AddCommand(newNodeCmd(g), newSimulateCmd(g), newVerifyCmd(g), newElectCmd(g))

	return root
}

// apply overlays command-line flags onto file settings.
func (g *globalFlags) apply(s *config.Settings) {
	if g.logLevel != "" {
		s.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		s.LogFormat = g.logFormat
	}
	if g.metricsAddr != "" {
		s.MetricsAddr = g.metricsAddr
	}
}

// newLogger builds the process logger writing to w.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	if level == "" {
		level = config.DefaultLogLevel
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: %w", format, config.ErrBadSetting)
	}
}
