// SPDX-License-Identifier: MIT
// Package: synchghs/config
//
// errors.go - sentinel errors for topology and settings loading.

package config

import "errors"

var (
	// ErrEmptyTopology indicates a file without a node count or without nodes.
	ErrEmptyTopology = errors.New("config: empty topology")

	// ErrBadLine indicates a line that does not parse in its section.
	ErrBadLine = errors.New("config: malformed line")

	// ErrNodeCount indicates a node section whose length differs from the declared N.
	ErrNodeCount = errors.New("config: node count mismatch")

	// ErrDuplicateNode indicates two node entries with the same ID.
	ErrDuplicateNode = errors.New("config: duplicate node")

	// ErrUnknownNode indicates an edge, neighbor list or lookup naming an undeclared node.
	ErrUnknownNode = errors.New("config: unknown node")

	// ErrBadEdge indicates a self-loop, a repeated edge or a negative weight.
	ErrBadEdge = errors.New("config: invalid edge")

	// ErrDisconnected indicates a topology where some node cannot reach another.
	ErrDisconnected = errors.New("config: topology not connected")

	// ErrUnknownTransport indicates a transport other than memory, tcp or mqtt.
	ErrUnknownTransport = errors.New("config: unknown transport")

	// ErrBadSetting indicates a setting value that cannot be used.
	ErrBadSetting = errors.New("config: invalid setting")
)
