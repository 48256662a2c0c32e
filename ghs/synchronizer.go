// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// synchronizer.go - round synchronizer: emulates lock-step rounds on per-link
// FIFO delivery.
//
// Every incoming message is classified against the node's position
// (level, phase, round):
//
//   - Due:   consume now. Round-scoped and JOIN messages are counted once per
//     sender toward the current round's expected total.
//   - Defer: too early; held in the Buffer until the position catches up.
//   - Stale: too late, duplicate or unexpected; dropped by the caller.
//
// Not safe for concurrent use; the owning Node holds its mutex around every
// call. The Buffer keeps its own lock.

package ghs

// Verdict is the gate's decision for one message.
type Verdict int

const (
	VerdictDue Verdict = iota
	VerdictDefer
	VerdictStale
)

func (v Verdict) String() string {
	switch v {
	case VerdictDue:
		return "due"
	case VerdictDefer:
		return "defer"
	default:
		return "stale"
	}
}

// noPeer marks "no reply outstanding".
const noPeer = -1

// Synchronizer tracks the node's (level, phase, round) and gates messages.
type Synchronizer struct {
	level int
	phase Phase
	round int

	counted  map[int]bool // senders already counted at this position
	received int          // due messages counted at this position
	awaiting int          // peer whose REPLY is outstanding, or noPeer

	buf *Buffer[Message]
}

// NewSynchronizer returns a gate at level 0, PhaseInit, with an empty buffer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		phase:    PhaseInit,
		round:    RoundAny,
		counted:  make(map[int]bool),
		awaiting: noPeer,
		buf:      NewBuffer[Message](),
	}
}

// Begin moves to a new position and resets the per-round count.
func (s *Synchronizer) Begin(level int, phase Phase, round int) {
	s.level, s.phase, s.round = level, phase, round
	s.counted = make(map[int]bool)
	s.received = 0
}

// Level, Phase, Round and Received expose the current position.
func (s *Synchronizer) Level() int    { return s.level }
func (s *Synchronizer) Phase() Phase  { return s.phase }
func (s *Synchronizer) Round() int    { return s.round }
func (s *Synchronizer) Received() int { return s.received }

// Await records that a REPLY from peer is outstanding.
func (s *Synchronizer) Await(peer int) { s.awaiting = peer }

// Awaiting returns the peer whose REPLY is outstanding, or -1.
func (s *Synchronizer) Awaiting() int { return s.awaiting }

// Classify decides what to do with m without changing any state.
func (s *Synchronizer) Classify(m Message) Verdict {
	switch {
	case m.Level < s.level:
		return VerdictStale
	case m.Level > s.level:
		return VerdictDefer
	}

	switch m.Action {
	case ActionTerminate:
		return VerdictDue
	case ActionTest:
		if s.phase >= PhaseTest {
			return VerdictDue
		}
		return VerdictDefer
	case ActionReply:
		if s.awaiting != noPeer && s.awaiting == m.From {
			return VerdictDue
		}
		return VerdictStale
	case ActionJoin:
		switch {
		case s.phase < PhaseJoin:
			return VerdictDefer
		case s.phase > PhaseJoin || s.counted[m.From]:
			return VerdictStale
		}
		return VerdictDue
	case ActionSearch, ActionConverge, ActionMerge:
		return s.classifyRound(m)
	default:
		return VerdictStale // link control never reaches a phase
	}
}

// classifyRound orders m against the current position by (phase, round).
func (s *Synchronizer) classifyRound(m Message) Verdict {
	mp := m.Action.Phase()
	switch {
	case mp > s.phase, mp == s.phase && m.Round > s.round:
		return VerdictDefer
	case mp < s.phase, m.Round < s.round:
		return VerdictStale
	case s.counted[m.From]:
		return VerdictStale // re-delivery in the same round
	}

	return VerdictDue
}

// Admit classifies m, counts it when due, buffers it when early and returns
// the verdict. The caller processes due messages and drops stale ones.
func (s *Synchronizer) Admit(m Message) Verdict {
	v := s.Classify(m)
	switch v {
	case VerdictDue:
		s.consume(m)
	case VerdictDefer:
		s.buf.Add(m)
	}

	return v
}

// Next removes the earliest buffered message that is no longer early and
// returns it with its verdict; a due message is counted. ok is false when
// every buffered message is still early.
func (s *Synchronizer) Next() (m Message, v Verdict, ok bool) {
	m, ok = s.buf.TakeFirst(func(m Message) bool { return s.Classify(m) != VerdictDefer })
	if !ok {
		return Message{}, VerdictDefer, false
	}
	v = s.Classify(m)
	if v == VerdictDue {
		s.consume(m)
	}

	return m, v, true
}

// Pending returns the number of buffered messages.
func (s *Synchronizer) Pending() int { return s.buf.Len() }

// Discard empties the buffer and returns what it held, oldest first.
func (s *Synchronizer) Discard() []Message {
	held := s.buf.Snapshot()
	s.buf.Drop(func(Message) bool { return true })

	return held
}

// consume updates counters for a due message.
func (s *Synchronizer) consume(m Message) {
	switch {
	case m.Action.roundScoped(), m.Action == ActionJoin:
		s.counted[m.From] = true
		s.received++
	case m.Action == ActionReply:
		s.awaiting = noPeer
	}
}
