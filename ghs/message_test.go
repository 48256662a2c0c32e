package ghs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
)

func TestMessage_EncodeDecode(t *testing.T) {
	e := core.NewEdge(3, 2, 7)
	cases := []struct {
		name string
		msg  ghs.Message
		wire string
	}{
		{
			name: "test without content",
			msg:  ghs.Message{Action: ghs.ActionTest, Src: 3, From: 3, To: 5, Round: ghs.RoundAny, Level: 2},
			wire: "TEST|3|3|5|-1||2",
		},
		{
			name: "join with edge",
			msg: ghs.Message{Action: ghs.ActionJoin, Src: 2, From: 2, To: 3, Round: ghs.RoundAny, Level: 1,
				Payload: ghs.EdgePayload(&e)},
			wire: "JOIN|2|2|3|-1|2,3,7|1",
		},
		{
			name: "search token",
			msg: ghs.Message{Action: ghs.ActionSearch, Src: 9, From: 4, To: 1, Round: 3,
				Payload: ghs.Token(ghs.StatusSearch)},
			wire: "SEARCH|9|4|1|3|SEARCH|0",
		},
		{
			name: "converge keep-alive",
			msg: ghs.Message{Action: ghs.ActionConverge, Src: -1, From: 4, To: 1, Round: 12, Level: 3,
				Payload: ghs.Token(ghs.StatusEmpty)},
			wire: "CONVERGE|-1|4|1|12|EMPTY|3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wire, string(tc.msg.Encode()))
			got, err := ghs.Decode([]byte(tc.wire + "\n"))
			require.NoError(t, err)
			assert.Equal(t, tc.msg, got)
		})
	}
}

func TestDecode_SixFields(t *testing.T) {
	m, err := ghs.Decode([]byte("REPLY|1|1|2|-1|ACCEPT"))
	require.NoError(t, err)
	assert.Equal(t, ghs.ActionReply, m.Action)
	assert.Equal(t, ghs.StatusAccept, m.Payload.Status)
	assert.Zero(t, m.Level)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		frame string
		want  error
	}{
		{"", ghs.ErrBadFrame},
		{"TEST|1|2|3", ghs.ErrBadFrame},
		{"TEST|1|2|3|4|x|5|6", ghs.ErrBadFrame},
		{"PING|1|2|3|-1||0", ghs.ErrUnknownAction},
		{"TEST|a|2|3|-1||0", ghs.ErrBadFrame},
		{"TEST|1|2|3|-1||zero", ghs.ErrBadFrame},
		{"JOIN|1|2|3|-1|1,2|0", ghs.ErrBadPayload},
		{"JOIN|1|2|3|-1|2,2,5|0", ghs.ErrBadPayload},
		{"REPLY|1|2|3|-1|MAYBE|0", ghs.ErrBadPayload},
	}
	for _, tc := range cases {
		_, err := ghs.Decode([]byte(tc.frame))
		assert.ErrorIs(t, err, tc.want, tc.frame)
	}
}

func TestAction_Names(t *testing.T) {
	for _, name := range []string{"SEARCH", "TEST", "REPLY", "CONVERGE", "MERGE", "JOIN", "TERMINATE", "CONNECT", "DISCONNECT"} {
		a, err := ghs.ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.String())
	}
	assert.Equal(t, "Action(42)", ghs.Action(42).String())
	assert.Equal(t, "Status(42)", ghs.Status(42).String())

	assert.Equal(t, ghs.PhaseSearch, ghs.ActionSearch.Phase())
	assert.Equal(t, ghs.PhaseConverge, ghs.ActionConverge.Phase())
	assert.Equal(t, ghs.PhaseMerge, ghs.ActionMerge.Phase())
	assert.Equal(t, ghs.PhaseInit, ghs.ActionJoin.Phase())
}

func TestEdgePayload(t *testing.T) {
	assert.Equal(t, ghs.Payload{}, ghs.EdgePayload(nil))

	e := core.NewEdge(1, 2, 3)
	p := ghs.EdgePayload(&e)
	e.Weight = 99
	require.NotNil(t, p.Edge)
	assert.Equal(t, int64(3), p.Edge.Weight, "payload holds a copy")
	assert.False(t, p.IsEmpty())
	assert.True(t, ghs.Token(ghs.StatusEmpty).IsEmpty())
	assert.Equal(t, "1,2,3", p.String())
}
