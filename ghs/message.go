// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// message.go - the message envelope and its pipe-delimited wire codec.
//
// Wire format:
//
//	action|src|from|to|round|content|level
//
//   - content is empty, a status token or an edge "low,high,weight".
//   - round == RoundAny marks a level-scoped message.
//   - level is optional on decode; a six-field frame has level 0.

package ghs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/synchghs/core"
)

// RoundAny is the round of level-scoped messages (TEST, REPLY, JOIN, TERMINATE, link control).
const RoundAny = -1

const (
	fieldSep       = "|"
	minFrameFields = 6
	maxFrameFields = 7
)

// Action is the closed set of message kinds.
type Action int

const (
	ActionSearch Action = iota
	ActionTest
	ActionReply
	ActionConverge
	ActionMerge
	ActionJoin
	ActionTerminate
	ActionConnect
	ActionDisconnect
)

var actionNames = [...]string{
	ActionSearch:     "SEARCH",
	ActionTest:       "TEST",
	ActionReply:      "REPLY",
	ActionConverge:   "CONVERGE",
	ActionMerge:      "MERGE",
	ActionJoin:       "JOIN",
	ActionTerminate:  "TERMINATE",
	ActionConnect:    "CONNECT",
	ActionDisconnect: "DISCONNECT",
}

// String returns the wire name of a.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}

	return actionNames[a]
}

// ParseAction maps a wire name to its Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return Action(a), nil
		}
	}

	return 0, fmt.Errorf("ParseAction(%q): %w", s, ErrUnknownAction)
}

// Phase returns the phase whose rounds carry a, or PhaseInit for level-scoped actions.
func (a Action) Phase() Phase {
	switch a {
	case ActionSearch:
		return PhaseSearch
	case ActionConverge:
		return PhaseConverge
	case ActionMerge:
		return PhaseMerge
	default:
		return PhaseInit
	}
}

// roundScoped reports whether a is gated by round.
func (a Action) roundScoped() bool { return a.Phase() != PhaseInit }

// Status is a payload token.
type Status int

const (
	StatusNone Status = iota // no token: the payload is empty or an edge
	StatusAccept
	StatusReject
	StatusSearch
	StatusEmpty // keep-alive sent when a round has nothing real to say
	StatusMerge
	StatusConverge
)

var statusNames = [...]string{
	StatusNone:     "",
	StatusAccept:   "ACCEPT",
	StatusReject:   "REJECT",
	StatusSearch:   "SEARCH",
	StatusEmpty:    "EMPTY",
	StatusMerge:    "MERGE",
	StatusConverge: "CONVERGE",
}

// String returns the wire token of s.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}

	return statusNames[s]
}

// Payload is exactly one of: nothing, a status token, or an edge.
type Payload struct {
	Status Status
	Edge   *core.Edge
}

// Token returns a status payload.
func Token(s Status) Payload { return Payload{Status: s} }

// EdgePayload returns a payload carrying e, or an empty payload when e is nil.
func EdgePayload(e *core.Edge) Payload {
	if e == nil {
		return Payload{}
	}
	c := *e

	return Payload{Edge: &c}
}

// IsEmpty reports whether p is the EMPTY keep-alive token.
func (p Payload) IsEmpty() bool { return p.Status == StatusEmpty }

// String renders the wire content.
func (p Payload) String() string {
	if p.Edge != nil {
		return p.Edge.String()
	}

	return p.Status.String()
}

// parsePayload decodes wire content: a token name, an edge, or nothing.
func parsePayload(s string) (Payload, error) {
	if s == "" {
		return Payload{}, nil
	}
	for st, name := range statusNames {
		if st != int(StatusNone) && name == s {
			return Token(Status(st)), nil
		}
	}
	e, err := core.ParseEdge(s)
	if err != nil {
		return Payload{}, fmt.Errorf("content %q: %v: %w", s, err, ErrBadPayload)
	}

	return Payload{Edge: &e}, nil
}

// Message is one unit of protocol communication.
type Message struct {
	Action  Action
	Src     int // originating component ID
	From    int // sending node
	To      int // receiving node
	Round   int // RoundAny for level-scoped messages
	Level   int // sender's component level
	Payload Payload
}

// Encode renders m in the wire format.
func (m Message) Encode() []byte {
	var b strings.Builder
	b.WriteString(m.Action.String())
	for _, v := range []int{m.Src, m.From, m.To, m.Round} {
		b.WriteString(fieldSep)
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteString(fieldSep)
	b.WriteString(m.Payload.String())
	b.WriteString(fieldSep)
	b.WriteString(strconv.Itoa(m.Level))

	return []byte(b.String())
}

// String is the wire form, for logs.
func (m Message) String() string { return string(m.Encode()) }

// Decode parses one wire frame. Surrounding whitespace (such as a trailing
// newline) is ignored.
func Decode(data []byte) (Message, error) {
	parts := strings.Split(strings.TrimSpace(string(data)), fieldSep)
	if len(parts) < minFrameFields || len(parts) > maxFrameFields {
		return Message{}, fmt.Errorf("Decode: %d fields: %w", len(parts), ErrBadFrame)
	}
	var (
		m   Message
		err error
	)
	if m.Action, err = ParseAction(parts[0]); err != nil {
		return Message{}, fmt.Errorf("Decode: %w", err)
	}
	ints := []*int{&m.Src, &m.From, &m.To, &m.Round}
	for i, dst := range ints {
		if *dst, err = strconv.Atoi(parts[i+1]); err != nil {
			return Message{}, fmt.Errorf("Decode: field %d %q: %w", i+1, parts[i+1], ErrBadFrame)
		}
	}
	if m.Payload, err = parsePayload(parts[5]); err != nil {
		return Message{}, fmt.Errorf("Decode: %w", err)
	}
	if len(parts) == maxFrameFields {
		if m.Level, err = strconv.Atoi(parts[6]); err != nil {
			return Message{}, fmt.Errorf("Decode: level %q: %w", parts[6], ErrBadFrame)
		}
	}

	return m, nil
}
