package neighborhood

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/edgestream"
)

func TestBuild(t *testing.T) {
	edges := edgestream.EdgeList{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 2, Target: 0}, {Source: 1, Target: 0}, {Source: 3, Target: 3}}

	n := Build(edges, 4)
	require.Equal(t, 5, n.Len())

	assert.Equal(t, 2, n.Degree(0))
	assert.Equal(t, 1, n.Degree(1))
	assert.Equal(t, 1, n.Degree(2))
	assert.Equal(t, 1, n.Degree(3))
	assert.Equal(t, 0, n.Degree(4))
	assert.Equal(t, 0, n.Degree(100))

	assert.True(t, n.Contains(1, 0))
	assert.True(t, n.Contains(3, 3))
	assert.False(t, n.Contains(1, 2))
	assert.False(t, n.Contains(100, 0))

	assert.Equal(t, []uint32{1, 2}, slices.Collect(n.Neighbors(0)))
	assert.Empty(t, slices.Collect(n.Neighbors(4)))
	assert.Empty(t, slices.Collect(n.Neighbors(100)))

	assert.Equal(t, uint64(3), n.Edges())
}

func TestBuild_Grows(t *testing.T) {
	n := Build(edgestream.EdgeList{{Source: 0, Target: 7}}, 0)
	assert.Equal(t, 8, n.Len())
	assert.Equal(t, []uint32{0}, slices.Collect(n.Neighbors(7)))
}

func TestNeighbors_StopEarly(t *testing.T) {
	n := Build(edgestream.EdgeList{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 0, Target: 3}}, 3)

	var got []uint32
	for v := range n.Neighbors(0) {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []uint32{1, 2}, got)
}

func TestFromResult(t *testing.T) {
	assert.Zero(t, FromResult(&edgestream.Result{}).Len())

	res := &edgestream.Result{
		Edges:     edgestream.EdgeList{{Source: 0, Target: 1}, {Source: 2, Target: 0}},
		MaxNodeID: 3,
		Nodes:     4,
	}
	n := FromResult(res)
	assert.Equal(t, 4, n.Len())
	assert.Equal(t, 2, n.Degree(0))
	assert.Equal(t, 0, n.Degree(3))
}
