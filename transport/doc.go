// SPDX-License-Identifier: MIT

// Package transport holds the link layers that carry encoded GHS frames
// between nodes. Each subpackage satisfies ghs.Transport:
//
//	– memory: in-process network, one FIFO goroutine per directed link.
//	– tcp:    one outbound TCP connection per neighbor, newline-delimited frames.
//	– mqtt:   one broker topic per node via Eclipse Paho.
//
// Every implementation keeps frames of one link in send order and never
// blocks Send on the receiving peer.
package transport

import "errors"

// Sentinel errors shared by the link layers.
var (
	// ErrUnknownPeer indicates Send to a node that is not a configured neighbor.
	ErrUnknownPeer = errors.New("transport: unknown peer")

	// ErrClosed indicates use after Close.
	ErrClosed = errors.New("transport: closed")

	// ErrNoHandler indicates Ready before Listen.
	ErrNoHandler = errors.New("transport: no receive handler")
)
