// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// errors.go - sentinel errors. Callers branch with errors.Is.

package ghs

import "errors"

var (
	// ErrBadFrame indicates a wire frame with the wrong field count or a non-integer field.
	ErrBadFrame = errors.New("ghs: malformed frame")

	// ErrUnknownAction indicates an action name outside the closed Action set.
	ErrUnknownAction = errors.New("ghs: unknown action")

	// ErrBadPayload indicates content that is neither a token nor an edge.
	ErrBadPayload = errors.New("ghs: malformed payload")

	// ErrBadNodeCount indicates a network size below one or below the neighbor count.
	ErrBadNodeCount = errors.New("ghs: invalid node count")

	// ErrNotIncident indicates a neighbor edge that does not touch the node.
	ErrNotIncident = errors.New("ghs: edge not incident to node")

	// ErrDuplicateNeighbor indicates two edges to the same neighbor.
	ErrDuplicateNeighbor = errors.New("ghs: duplicate neighbor")

	// ErrNilTransport indicates NewNode got a nil Transport.
	ErrNilTransport = errors.New("ghs: nil transport")

	// ErrAlreadyRunning indicates a second Run on the same Node.
	ErrAlreadyRunning = errors.New("ghs: node already running")

	// errTerminated unwinds the phase driver once TERMINATE is reached.
	errTerminated = errors.New("ghs: terminated")
)
