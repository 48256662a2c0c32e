package sim_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/floodmax"
	"github.com/katalvlaran/synchghs/sim"
)

func TestElect_VerifiesAgainstBFS(t *testing.T) {
	g, err := builder.BuildGraph([]builder.BuilderOption{builder.WithSeed(11)}, builder.RandomConnected(14, 0.2))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rep, err := sim.Elect(ctx, g, sim.WithElectJitter(100*time.Microsecond, 2))
	require.NoError(t, err)

	assert.Len(t, rep.Results, 14)
	assert.Equal(t, 14, rep.Leader)
	assert.Positive(t, rep.Frames)
	assert.Positive(t, rep.MaxDegree)
	require.NoError(t, sim.VerifyElection(g, rep))
}

func TestElect_Star(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Star(5))
	require.NoError(t, err)

	rep, err := sim.Elect(context.Background(), g)
	require.NoError(t, err)
	require.NoError(t, sim.VerifyElection(g, rep))
	assert.Equal(t, 4, rep.MaxDegree, "the hub touches every leaf")
	assert.LessOrEqual(t, rep.Height, 2)
}

func TestElect_EmptyGraph(t *testing.T) {
	_, err := sim.Elect(context.Background(), core.NewGraph())
	assert.ErrorIs(t, err, sim.ErrEmptyGraph)
}

func TestAggregateElection_Disagreement(t *testing.T) {
	_, err := sim.AggregateElection([]floodmax.Result{
		{ID: 1, Leader: 2, Parent: 2, MaxDegree: 1},
		{ID: 2, Leader: 1, Parent: floodmax.NoParent, MaxDegree: 1},
	})
	assert.ErrorIs(t, err, sim.ErrDisagreement)

	_, err = sim.AggregateElection([]floodmax.Result{
		{ID: 1, Leader: 2, Parent: 2, MaxDegree: 1},
		{ID: 2, Leader: 2, Parent: floodmax.NoParent, MaxDegree: 3},
	})
	assert.ErrorIs(t, err, sim.ErrDisagreement)

	_, err = sim.AggregateElection(nil)
	assert.ErrorIs(t, err, sim.ErrEmptyGraph)
}

func TestVerifyElection_Mismatch(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Cycle(4))
	require.NoError(t, err)

	good := func() []floodmax.Result {
		// Cycle 1-2-3-4-1 rooted at 4: 1 and 3 hang off 4, 2 picks the smaller of them.
		return []floodmax.Result{
			{ID: 1, Leader: 4, Distance: 1, Depth: 1, Parent: 4, Children: []int{2}, MaxDegree: 2},
			{ID: 2, Leader: 4, Distance: 2, Depth: 2, Parent: 1, MaxDegree: 2},
			{ID: 3, Leader: 4, Distance: 1, Depth: 1, Parent: 4, MaxDegree: 2},
			{ID: 4, Leader: 4, Parent: floodmax.NoParent, Children: []int{1, 3}, MaxDegree: 2},
		}
	}
	rep, err := sim.AggregateElection(good())
	require.NoError(t, err)
	require.NoError(t, sim.VerifyElection(g, rep))
	assert.Equal(t, 2, rep.Height)

	cases := map[string]func([]floodmax.Result){
		"wrong parent":   func(rs []floodmax.Result) { rs[1].Parent = 3 },
		"wrong depth":    func(rs []floodmax.Result) { rs[1].Depth = 1 },
		"wrong distance": func(rs []floodmax.Result) { rs[2].Distance = 3 },
		"missing child":  func(rs []floodmax.Result) { rs[3].Children = []int{1} },
		"wrong degree": func(rs []floodmax.Result) {
			for i := range rs {
				rs[i].MaxDegree = 3
			}
		},
		"wrong leader": func(rs []floodmax.Result) {
			for i := range rs {
				rs[i].Leader = 3
			}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rs := good()
			mutate(rs)
			rep, err := sim.AggregateElection(rs)
			require.NoError(t, err)
			assert.ErrorIs(t, sim.VerifyElection(g, rep), sim.ErrMismatch)
		})
	}

	rep, err = sim.AggregateElection(good()[:3])
	require.NoError(t, err)
	assert.ErrorIs(t, sim.VerifyElection(g, rep), sim.ErrMismatch, "missing report")
}
