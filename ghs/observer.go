// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// observer.go - engine event hooks. The metrics package provides the
// Prometheus implementation.

package ghs

import "time"

// Drop reasons reported to Observer.MessageDropped.
const (
	DropStale      = "stale"
	DropMalformed  = "malformed"
	DropMisrouted  = "misrouted"
	DropUnexpected = "unexpected"
)

// Observer receives engine events. Methods are called with the node's lock
// held and must not block or call back into the Node.
type Observer interface {
	MessageSent(node int, m Message)
	MessageReceived(node int, m Message)
	MessageDeferred(node int, m Message)
	MessageDropped(node int, m Message, reason string)
	PhaseCompleted(node, level int, p Phase, d time.Duration)
	LevelCompleted(node, level int)
	Terminated(node, level int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) MessageSent(int, Message)                      {}
func (NopObserver) MessageReceived(int, Message)                  {}
func (NopObserver) MessageDeferred(int, Message)                  {}
func (NopObserver) MessageDropped(int, Message, string)           {}
func (NopObserver) PhaseCompleted(int, int, Phase, time.Duration) {}
func (NopObserver) LevelCompleted(int, int)                       {}
func (NopObserver) Terminated(int, int)                           {}
