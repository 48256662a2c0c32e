// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// main.go - process entry: signal handling and the root command.

// Command ghs builds a minimum spanning tree with the synchronous GHS
// protocol.
//
//	ghs node     --config topo.yaml --id 3     run one process over tcp or mqtt
//	ghs simulate --shape cycle --n 8           run a whole network in-process
//	ghs verify   --config topo.txt report...   check node reports against Kruskal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
