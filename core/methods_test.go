// SPDX-License-Identifier: MIT
// Package core_test verifies core.Graph method-level contracts.

package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/katalvlaran/synchghs/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSquare returns the 4-cycle 1-2-3-4-1 with weights 1,2,3,4.
func buildSquare(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	for i := 1; i <= 4; i++ {
		_, err := g.AddEdge(i, i%4+1, int64(i))
		require.NoError(t, err)
	}

	return g
}

// TestGraph_AddVertex covers validation and idempotence.
func TestGraph_AddVertex(t *testing.T) {
	g := core.NewGraph()
	assert.ErrorIs(t, g.AddVertex(-1), core.ErrNegativeVertexID)
	require.NoError(t, g.AddVertex(3))
	require.NoError(t, g.AddVertex(3))
	assert.True(t, g.HasVertex(3))
	assert.False(t, g.HasVertex(4))
	assert.Equal(t, 1, g.VertexCount())
}

// TestGraph_AddEdge covers loops, parallel edges and weight lookup.
func TestGraph_AddEdge(t *testing.T) {
	g := core.NewGraph()
	e, err := g.AddEdge(5, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, core.NewEdge(2, 5, 9), e)
	assert.True(t, g.HasEdge(2, 5))
	assert.True(t, g.HasEdge(5, 2))

	_, err = g.AddEdge(2, 5, 1)
	assert.ErrorIs(t, err, core.ErrMultiEdgeNotAllowed)
	_, err = g.AddEdge(1, 1, 1)
	assert.ErrorIs(t, err, core.ErrLoopNotAllowed)
	_, err = g.AddEdge(-1, 1, 1)
	assert.ErrorIs(t, err, core.ErrNegativeVertexID)

	w, err := g.Weight(5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), w)
	_, err = g.Weight(2, 7)
	assert.ErrorIs(t, err, core.ErrEdgeNotFound)
	assert.Equal(t, 1, g.EdgeCount())
}

// TestGraph_Ordering anchors the sorted output of Vertices, Edges and Neighbors.
func TestGraph_Ordering(t *testing.T) {
	g := buildSquare(t)
	assert.Equal(t, []int{1, 2, 3, 4}, g.Vertices())
	assert.Equal(t, []core.Edge{
		core.NewEdge(1, 2, 1),
		core.NewEdge(2, 3, 2),
		core.NewEdge(3, 4, 3),
		core.NewEdge(1, 4, 4),
	}, g.Edges())

	nbs, err := g.Neighbors(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{core.NewEdge(1, 2, 1), core.NewEdge(1, 4, 4)}, nbs)

	ids, err := g.NeighborIDs(3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, ids)

	_, err = g.Neighbors(99)
	assert.ErrorIs(t, err, core.ErrVertexNotFound)
}

// TestGraph_Clone verifies the copy is deep.
func TestGraph_Clone(t *testing.T) {
	g := buildSquare(t)
	c := g.Clone()
	_, err := c.AddEdge(1, 3, 10)
	require.NoError(t, err)
	assert.False(t, g.HasEdge(1, 3))
	assert.Equal(t, g.EdgeCount()+1, c.EdgeCount())
}

// TestGraph_ConcurrentAddEdge ensures concurrent star construction is safe.
func TestGraph_ConcurrentAddEdge(t *testing.T) {
	g := core.NewGraph()
	const num = 200
	var wg sync.WaitGroup
	errs := make(chan error, num)
	wg.Add(num)
	for i := 1; i <= num; i++ {
		go func(id int) {
			defer wg.Done()
			if _, err := g.AddEdge(0, id, int64(id)); err != nil {
				errs <- fmt.Errorf("AddEdge(0,%d): %w", id, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ids, err := g.NeighborIDs(0)
	require.NoError(t, err)
	assert.Len(t, ids, num)
}
