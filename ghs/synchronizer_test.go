package ghs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/ghs"
)

func search(from, round, level int) ghs.Message {
	return ghs.Message{Action: ghs.ActionSearch, From: from, To: 1, Round: round, Level: level,
		Payload: ghs.Token(ghs.StatusEmpty)}
}

func TestSynchronizer_Initial(t *testing.T) {
	s := ghs.NewSynchronizer()
	assert.Zero(t, s.Level())
	assert.Equal(t, ghs.PhaseInit, s.Phase())
	assert.Equal(t, ghs.RoundAny, s.Round())
	assert.Zero(t, s.Received())
	assert.Equal(t, -1, s.Awaiting())
	assert.Zero(t, s.Pending())
}

func TestSynchronizer_RoundsDeferInOrder(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(0, ghs.PhaseSearch, 0)

	assert.Equal(t, ghs.VerdictDue, s.Admit(search(2, 0, 0)))
	assert.Equal(t, 1, s.Received())
	assert.Equal(t, ghs.VerdictStale, s.Admit(search(2, 0, 0)), "re-delivery in the same round")
	assert.Equal(t, 1, s.Received())

	// node 3 runs two rounds ahead
	assert.Equal(t, ghs.VerdictDefer, s.Admit(search(3, 2, 0)))
	assert.Equal(t, ghs.VerdictDefer, s.Admit(search(3, 1, 0)))
	assert.Equal(t, 2, s.Pending())
	_, _, ok := s.Next()
	assert.False(t, ok, "both still early")

	s.Begin(0, ghs.PhaseSearch, 1)
	assert.Zero(t, s.Received())
	m, v, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, ghs.VerdictDue, v)
	assert.Equal(t, 1, m.Round, "round 2 is skipped while still early")
	assert.Equal(t, 1, s.Received())
	_, _, ok = s.Next()
	assert.False(t, ok)

	s.Begin(0, ghs.PhaseSearch, 2)
	m, v, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, ghs.VerdictDue, v)
	assert.Equal(t, 2, m.Round)
	assert.Zero(t, s.Pending())
}

func TestSynchronizer_PhaseOrdering(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(0, ghs.PhaseSearch, 3)

	converge := ghs.Message{Action: ghs.ActionConverge, From: 2, Round: 4}
	assert.Equal(t, ghs.VerdictDefer, s.Classify(converge), "later phase")

	s.Begin(0, ghs.PhaseConverge, 4)
	assert.Equal(t, ghs.VerdictDue, s.Classify(converge))
	assert.Equal(t, ghs.VerdictStale, s.Classify(search(2, 3, 0)), "earlier phase")
	assert.Equal(t, ghs.VerdictStale, s.Classify(ghs.Message{Action: ghs.ActionConverge, From: 2, Round: 3}))
	assert.Equal(t, ghs.VerdictDefer, s.Classify(ghs.Message{Action: ghs.ActionMerge, From: 2, Round: 8}))
}

func TestSynchronizer_Levels(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(2, ghs.PhaseMerge, 9)

	assert.Equal(t, ghs.VerdictStale, s.Classify(ghs.Message{Action: ghs.ActionMerge, From: 2, Round: 9, Level: 1}))
	assert.Equal(t, ghs.VerdictDefer, s.Classify(search(2, 0, 3)), "next level's SEARCH waits")
	assert.Equal(t, ghs.VerdictDefer, s.Classify(ghs.Message{Action: ghs.ActionTerminate, From: 2, Level: 3}))
	assert.Equal(t, ghs.VerdictDue, s.Classify(ghs.Message{Action: ghs.ActionTerminate, From: 2, Level: 2}))
	assert.Equal(t, ghs.VerdictStale, s.Classify(ghs.Message{Action: ghs.ActionConnect, From: 2, Level: 2}))
}

func TestSynchronizer_TestAndReply(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(0, ghs.PhaseSearch, 1)

	test := ghs.Message{Action: ghs.ActionTest, From: 4, Round: ghs.RoundAny}
	assert.Equal(t, ghs.VerdictDefer, s.Classify(test), "TEST waits for our own TEST phase")
	s.Begin(0, ghs.PhaseTest, ghs.RoundAny)
	assert.Equal(t, ghs.VerdictDue, s.Classify(test))
	s.Begin(0, ghs.PhaseMerge, 7)
	assert.Equal(t, ghs.VerdictDue, s.Classify(test), "answered in any later phase")

	reply := ghs.Message{Action: ghs.ActionReply, From: 4, Round: ghs.RoundAny}
	assert.Equal(t, ghs.VerdictStale, s.Admit(reply), "nothing outstanding")
	s.Await(5)
	assert.Equal(t, ghs.VerdictStale, s.Admit(reply), "wrong peer")
	s.Await(4)
	assert.Equal(t, ghs.VerdictDue, s.Admit(reply))
	assert.Equal(t, -1, s.Awaiting())
	assert.Equal(t, ghs.VerdictStale, s.Admit(reply), "duplicate reply")
}

func TestSynchronizer_Join(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(1, ghs.PhaseMerge, 20)

	join := ghs.Message{Action: ghs.ActionJoin, From: 6, Round: ghs.RoundAny, Level: 1}
	assert.Equal(t, ghs.VerdictDefer, s.Admit(join))
	assert.Equal(t, 1, s.Pending())

	s.Begin(1, ghs.PhaseJoin, ghs.RoundAny)
	m, v, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, ghs.VerdictDue, v)
	assert.Equal(t, 6, m.From)
	assert.Equal(t, 1, s.Received())
	assert.Equal(t, ghs.VerdictStale, s.Admit(join), "one JOIN per neighbor")
	assert.Equal(t, ghs.VerdictDue, s.Admit(ghs.Message{Action: ghs.ActionJoin, From: 7, Level: 1}))
	assert.Equal(t, 2, s.Received())
}

func TestSynchronizer_Discard(t *testing.T) {
	s := ghs.NewSynchronizer()
	s.Begin(0, ghs.PhaseSearch, 0)
	s.Admit(search(2, 1, 0))
	s.Admit(search(3, 4, 0))

	held := s.Discard()
	require.Len(t, held, 2)
	assert.Equal(t, 2, held[0].From)
	assert.Zero(t, s.Pending())
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "due", ghs.VerdictDue.String())
	assert.Equal(t, "defer", ghs.VerdictDefer.String())
	assert.Equal(t, "stale", ghs.VerdictStale.String())
	assert.Equal(t, "MERGE", ghs.PhaseMerge.String())
	assert.Equal(t, "Phase(9)", ghs.Phase(9).String())
}
