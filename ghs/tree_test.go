package ghs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
)

func TestTree_StageCommit(t *testing.T) {
	tr := ghs.NewTree()
	e12 := core.NewEdge(1, 2, 4)
	e13 := core.NewEdge(1, 3, 1)

	assert.True(t, tr.Stage(2, e12))
	assert.False(t, tr.Stage(2, e12), "already staged")
	assert.True(t, tr.Stage(3, e13))
	assert.Zero(t, tr.Len(), "staged edges are not tree edges yet")
	assert.False(t, tr.HasNeighbor(2))

	added := tr.Commit()
	assert.Equal(t, []core.Edge{e13, e12}, added, "sorted by weight")
	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.HasNeighbor(3))
	assert.Equal(t, []int{2, 3}, tr.Neighbors())
	assert.Equal(t, []core.Edge{e13, e12}, tr.Edges())

	assert.False(t, tr.Stage(3, e13), "already a tree edge")
	assert.Empty(t, tr.Commit())
}
