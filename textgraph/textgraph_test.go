package textgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/edgestream"
	"github.com/hupe1980/edgestream/blobstore"
)

func TestRead(t *testing.T) {
	ctx := context.Background()

	t.Run("Pairs", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("0 1\n0 2\n2 0\n"), 0)
		require.NoError(t, err)
		assert.Equal(t, edgestream.EdgeList{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 2, Target: 0}}, res.Edges)
		assert.Equal(t, uint32(2), res.MaxNodeID)
		assert.False(t, res.Partial)
	})

	t.Run("SkipHeader", func(t *testing.T) {
		in := "# Directed graph\n# Nodes: 3 Edges: 2\n5\t7\n7 5\n"
		res, err := Read(ctx, strings.NewReader(in), 2)
		require.NoError(t, err)
		assert.Equal(t, edgestream.EdgeList{{Source: 5, Target: 7}, {Source: 7, Target: 5}}, res.Edges)
		assert.Equal(t, uint32(7), res.MaxNodeID)
	})

	t.Run("SkipLongHeader", func(t *testing.T) {
		in := strings.Repeat("x", 10000) + "\n1 2\n"
		res, err := Read(ctx, strings.NewReader(in), 1)
		require.NoError(t, err)
		assert.Equal(t, edgestream.EdgeList{{Source: 1, Target: 2}}, res.Edges)
	})

	t.Run("SkipPastEnd", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("header only"), 3)
		require.NoError(t, err)
		assert.Empty(t, res.Edges)
	})

	t.Run("FreeFormWhitespace", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("  1   2 3\n\n 4  "), 0)
		require.NoError(t, err)
		assert.Equal(t, edgestream.EdgeList{{Source: 1, Target: 2}, {Source: 3, Target: 4}}, res.Edges)
	})

	t.Run("SelfLoops", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("1 1\n1 2\n"), 0)
		require.NoError(t, err)
		assert.Equal(t, 1, res.SelfLoops)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("0 1\n0 x\n"), 0)

		var se *SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, se.Edge)
		assert.Equal(t, "x", se.Token)
		assert.True(t, res.Partial)
		assert.Equal(t, edgestream.EdgeList{{Source: 0, Target: 1}}, res.Edges)
	})

	t.Run("IDTooLarge", func(t *testing.T) {
		_, err := Read(ctx, strings.NewReader("0 4294967296\n"), 0)

		var se *SyntaxError
		require.ErrorAs(t, err, &se)
	})

	t.Run("DanglingSource", func(t *testing.T) {
		res, err := Read(ctx, strings.NewReader("0 1\n2"), 0)

		var se *SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Empty(t, se.Token)
		assert.True(t, res.Partial)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := Read(cctx, strings.NewReader("0 1\n"), 0)
		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, res.Partial)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "g.txt", []byte("src dst\n0 1\n1 0\n")))

	res, err := Load(ctx, store, "g.txt", 1)
	require.NoError(t, err)
	assert.Equal(t, edgestream.EdgeList{{Source: 0, Target: 1}, {Source: 1, Target: 0}}, res.Edges)
	assert.Equal(t, 1, res.Sources)

	_, err = Load(ctx, store, "missing.txt", 0)
	var oe *edgestream.OpenError
	require.ErrorAs(t, err, &oe)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
