package prim_kruskal_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/prim_kruskal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTriangle: 1-2 (1), 2-3 (2), 1-3 (3). MST = {1-2, 2-3}, weight 3.
func buildTriangle() *core.Graph {
	g := core.NewGraph()
	_, _ = g.AddEdge(1, 2, 1)
	_, _ = g.AddEdge(2, 3, 2)
	_, _ = g.AddEdge(1, 3, 3)

	return g
}

// buildMediumGraph creates a connected graph with n vertices and edgesCount
// edges: a chain for connectivity, then random extras. Weights may repeat so
// the (low, high) tie-break is exercised.
func buildMediumGraph(n, edgesCount int) *core.Graph {
	g := core.NewGraph()
	r := rand.New(rand.NewSource(42))
	for i := 1; i < n; i++ {
		_, _ = g.AddEdge(i-1, i, int64(1+r.Intn(10)))
	}
	for added := n - 1; added < edgesCount; {
		u, v := r.Intn(n), r.Intn(n)
		if _, err := g.AddEdge(u, v, int64(1+r.Intn(100))); err == nil {
			added++
		}
	}

	return g
}

// TestValidation covers nil, empty, single-vertex and disconnected graphs.
func TestValidation(t *testing.T) {
	_, _, err := prim_kruskal.Kruskal(nil)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
	_, _, err = prim_kruskal.Prim(nil, 0)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)

	empty := core.NewGraph()
	_, _, err = prim_kruskal.Kruskal(empty)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)
	_, _, err = prim_kruskal.Prim(empty, 0)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)

	single := core.NewGraph()
	require.NoError(t, single.AddVertex(7))
	edges, total, err := prim_kruskal.Kruskal(single)
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.Zero(t, total)
	_, _, err = prim_kruskal.Prim(single, 8)
	assert.ErrorIs(t, err, core.ErrVertexNotFound)

	split := core.NewGraph()
	_, _ = split.AddEdge(1, 2, 1)
	_, _ = split.AddEdge(3, 4, 1)
	_, _, err = prim_kruskal.Kruskal(split)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)
	_, _, err = prim_kruskal.Prim(split, 1)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)
}

// TestTriangle checks both algorithms on the smallest interesting cycle.
func TestTriangle(t *testing.T) {
	want := []core.Edge{core.NewEdge(1, 2, 1), core.NewEdge(2, 3, 2)}
	for _, opts := range []prim_kruskal.MSTOptions{
		prim_kruskal.NewOptions(),
		prim_kruskal.NewOptions(prim_kruskal.WithMethod(prim_kruskal.MethodPrim), prim_kruskal.WithRoot(3)),
	} {
		edges, total, err := prim_kruskal.Compute(buildTriangle(), opts)
		require.NoError(t, err, opts.Method)
		assert.Equal(t, want, edges, opts.Method)
		assert.Equal(t, int64(3), total, opts.Method)
	}

	_, _, err := prim_kruskal.Compute(buildTriangle(), prim_kruskal.MSTOptions{Method: "boruvka"})
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
}

// TestPrimMatchesKruskal asserts both algorithms pick the identical tree,
// including under repeated weights.
func TestPrimMatchesKruskal(t *testing.T) {
	g := buildMediumGraph(60, 240)
	ke, kw, err := prim_kruskal.Kruskal(g)
	require.NoError(t, err)
	for _, root := range []int{0, 17, 59} {
		pe, pw, err := prim_kruskal.Prim(g, root)
		require.NoError(t, err)
		assert.Equal(t, kw, pw, "root %d", root)
		assert.Equal(t, ke, pe, "root %d", root)
	}
	assert.Len(t, ke, 59)
}
