// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// message.go - actions, stages and the pipe-delimited wire codec.
//
// Wire format (the six-field GHS frame, src = from):
//
//	action|src|from|to|round|content
//
//   - ELECTLEADER content is "largest,distance".
//   - BUILD content is SEARCH or EMPTY; REPLY content is CHILD or EMPTY.
//   - DEGREE and END content is a degree.

package floodmax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/synchghs/ghs"
)

const (
	fieldSep    = "|"
	frameFields = 6

	tokenSearch = "SEARCH"
	tokenChild  = "CHILD"
	tokenEmpty  = "EMPTY"
)

// Stage is one step of a run. Stages are ordered; the gate compares them to
// tell early messages from late ones.
type Stage int

const (
	StageInit Stage = iota
	StageElect
	StageBuild
	StageReply
	StageDegree
	StageEnd
)

var stageNames = [...]string{
	StageInit:   "INIT",
	StageElect:  "ELECT",
	StageBuild:  "BUILD",
	StageReply:  "REPLY",
	StageDegree: "DEGREE",
	StageEnd:    "END",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Stage(" + strconv.Itoa(int(s)) + ")"
	}

	return stageNames[s]
}

// Action is the closed set of message kinds. Each belongs to one Stage.
type Action int

const (
	ActionElect Action = iota
	ActionBuild
	ActionReply
	ActionDegree
	ActionEnd
)

var actionNames = [...]string{
	ActionElect:  "ELECTLEADER",
	ActionBuild:  "BUILD",
	ActionReply:  "REPLY",
	ActionDegree: "DEGREE",
	ActionEnd:    "END",
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

// Stage returns the stage that consumes a.
func (a Action) Stage() Stage {
	return Stage(int(a) + int(StageElect))
}

// roundScoped reports whether a is gated by round.
func (a Action) roundScoped() bool { return a == ActionElect || a == ActionBuild }

// Message is one unit of election traffic.
type Message struct {
	Action Action
	From   int
	To     int
	Round  int  // ghs.RoundAny for REPLY, DEGREE and END
	Value  int  // ELECTLEADER: largest ID seen; DEGREE, END: a degree
	Dist   int  // ELECTLEADER: hops to Value
	Mark   bool // BUILD: SEARCH rather than EMPTY; REPLY: the sender is a child
}

// content renders the action-specific last field.
func (m Message) content() string {
	switch m.Action {
	case ActionElect:
		return strconv.Itoa(m.Value) + "," + strconv.Itoa(m.Dist)
	case ActionBuild:
		if m.Mark {
			return tokenSearch
		}
		return tokenEmpty
	case ActionReply:
		if m.Mark {
			return tokenChild
		}
		return tokenEmpty
	default:
		return strconv.Itoa(m.Value)
	}
}

// Encode renders m in the wire format.
func (m Message) Encode() []byte {
	var b strings.Builder
	b.WriteString(m.Action.String())
	for _, v := range []int{m.From, m.From, m.To, m.Round} {
		b.WriteString(fieldSep)
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteString(fieldSep)
	b.WriteString(m.content())

	return []byte(b.String())
}

// String is the wire form, for logs.
func (m Message) String() string { return string(m.Encode()) }

// Decode parses one wire frame. Surrounding whitespace is ignored.
func Decode(data []byte) (Message, error) {
	parts := strings.Split(strings.TrimSpace(string(data)), fieldSep)
	if len(parts) != frameFields {
		return Message{}, fmt.Errorf("Decode: %d fields: %w", len(parts), ErrBadFrame)
	}
	var (
		m   Message
		src int
		err error
	)
	if m.Action, err = ParseAction(parts[0]); err != nil {
		return Message{}, fmt.Errorf("Decode: %w", err)
	}
	for i, dst := range []*int{&src, &m.From, &m.To, &m.Round} {
		if *dst, err = strconv.Atoi(parts[i+1]); err != nil {
			return Message{}, fmt.Errorf("Decode: field %d %q: %w", i+1, parts[i+1], ErrBadFrame)
		}
	}
	if err = m.parseContent(parts[5]); err != nil {
		return Message{}, fmt.Errorf("Decode: %s content %q: %w", m.Action, parts[5], err)
	}

	return m, nil
}

func (m *Message) parseContent(s string) error {
	switch m.Action {
	case ActionElect:
		v, d, ok := strings.Cut(s, ",")
		if !ok {
			return ErrBadContent
		}
		var err error
		if m.Value, err = strconv.Atoi(v); err != nil {
			return ErrBadContent
		}
		if m.Dist, err = strconv.Atoi(d); err != nil || m.Dist < 0 {
			return ErrBadContent
		}
	case ActionBuild, ActionReply:
		want := tokenSearch
		if m.Action == ActionReply {
			want = tokenChild
		}
		switch s {
		case want:
			m.Mark = true
		case tokenEmpty:
		default:
			return ErrBadContent
		}
	default:
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return ErrBadContent
		}
		m.Value = v
	}

	return nil
}

// roundOf returns the wire round for a message of a sent at round r.
func roundOf(a Action, r int) int {
	if a.roundScoped() {
		return r
	}

	return ghs.RoundAny
}
