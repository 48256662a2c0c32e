package bfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/bfs"
	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/core"
)

func TestBFS_Errors(t *testing.T) {
	_, err := bfs.BFS(nil, 1)
	assert.ErrorIs(t, err, bfs.ErrGraphNil)

	g := core.NewGraph()
	_, err = bfs.BFS(g, 1)
	assert.ErrorIs(t, err, bfs.ErrStartVertexNotFound)

	require.NoError(t, g.AddVertex(1))
	_, err = bfs.BFS(g, 1, bfs.WithMaxDepth(-1))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
}

func TestBFS_SingleVertex(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddVertex(7))
	res, err := bfs.BFS(g, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, res.Order)
	assert.Equal(t, 0, res.Height())
	path, err := res.PathTo(7)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, path)
}

func TestBFS_CycleDepths(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Cycle(6))
	require.NoError(t, err)

	res, err := bfs.BFS(g, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 6, 3, 5, 4}, res.Order)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 6: 1, 3: 2, 5: 2, 4: 3}, res.Depth)
	assert.Equal(t, 3, res.Height())

	path, err := res.PathTo(4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, path)
}

func TestBFS_Options(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Path(5))
	require.NoError(t, err)

	res, err := bfs.BFS(g, 1, bfs.WithMaxDepth(2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.Order)
	assert.False(t, res.Reached(4))
	_, err = res.PathTo(5)
	assert.ErrorIs(t, err, bfs.ErrNoPath)

	res, err = bfs.BFS(g, 1, bfs.WithFilterNeighbor(func(_, nb int) bool { return nb != 3 }))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Order)

	stop := errors.New("stop")
	_, err = bfs.BFS(g, 1, bfs.WithOnVisit(func(id, _ int) error {
		if id == 3 {
			return stop
		}
		return nil
	}))
	assert.ErrorIs(t, err, stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bfs.BFS(g, 1, bfs.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}
