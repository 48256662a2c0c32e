// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// errors.go - sentinel errors. Callers branch with errors.Is.

package floodmax

import "errors"

var (
	// ErrBadFrame indicates a wire frame with the wrong field count or a non-integer field.
	ErrBadFrame = errors.New("floodmax: malformed frame")

	// ErrUnknownAction indicates an action name outside the closed Action set.
	ErrUnknownAction = errors.New("floodmax: unknown action")

	// ErrBadContent indicates content that does not fit the action.
	ErrBadContent = errors.New("floodmax: malformed content")

	// ErrBadNodeCount indicates a network size below one or below the neighbor count.
	ErrBadNodeCount = errors.New("floodmax: invalid node count")

	// ErrBadNeighbor indicates a self link or a neighbor listed twice.
	ErrBadNeighbor = errors.New("floodmax: invalid neighbor")

	// ErrNilTransport indicates NewNode got a nil Transport.
	ErrNilTransport = errors.New("floodmax: nil transport")

	// ErrAlreadyRunning indicates a second Run on the same Node.
	ErrAlreadyRunning = errors.New("floodmax: node already running")

	// ErrNotReached indicates a node the leader's BUILD flood never reached:
	// the network is not connected.
	ErrNotReached = errors.New("floodmax: not reached by the tree")
)
