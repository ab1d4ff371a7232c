package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/edgestream/codec"
	"github.com/hupe1980/edgestream/internal/config"
	"github.com/hupe1980/edgestream/internal/varint"
)

func writeGraph(t *testing.T, dir, name string, records ...[]uint32) {
	t.Helper()

	var buf []byte
	for _, neighbors := range records {
		buf = varint.Append(buf, uint64(len(neighbors)))
		for _, v := range neighbors {
			buf = binary.NativeEndian.AppendUint32(buf, v)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf, 0o600))
}

func runCLI(t *testing.T, args ...string) (int, Summary, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	var s Summary
	if stdout.Len() > 0 {
		require.NoError(t, codec.JSON{}.Unmarshal(stdout.Bytes(), &s), stdout.String())
	}
	return code, s, stderr.String()
}

func TestRun_Binary(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "g/part-0", []uint32{1, 2}, nil)
	writeGraph(t, dir, "g/part-1", []uint32{0})

	code, s, stderr := runCLI(t, "-root", dir, "-log-level", "error", "g/part-0", "g/part-1")
	require.Equal(t, 0, code, stderr)

	assert.Equal(t, []string{"g/part-0", "g/part-1"}, s.Sources)
	assert.Equal(t, 3, s.Edges)
	assert.Equal(t, uint64(3), s.Nodes)
	assert.Equal(t, uint32(2), s.MaxNodeID)
	assert.False(t, s.Partial)
	assert.Empty(t, s.Error)
	assert.Positive(t, s.Bytes)
}

func TestRun_ShardsAndNeighborhoods(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "g/part-0", []uint32{1, 2})
	writeGraph(t, dir, "g/part-1", []uint32{0})
	writeGraph(t, dir, "g/part-2", []uint32{0}, nil)

	code, s, stderr := runCLI(t,
		"-root", dir,
		"-shards", "2",
		"-concurrency", "2",
		"-neighborhoods",
		"-codec", "go-json",
		"-catalog", "listing",
		"-graph", "g",
	)
	require.Equal(t, 0, code, stderr)

	assert.Equal(t, "g", s.Graph)
	assert.Equal(t, 2, s.Shards)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, uint64(4), s.Nodes)
	assert.Equal(t, uint32(3), s.MaxNodeID)

	require.NotNil(t, s.Neighborhoods)
	assert.Equal(t, 4, s.Neighborhoods.Nodes)
	assert.Equal(t, 1, s.Neighborhoods.Isolated)
	assert.Equal(t, uint64(2), s.Neighborhoods.UndirectedEdges)
	assert.Equal(t, 2, s.Neighborhoods.MaxDegree)
}

func TestRun_StaticCatalogAndEdges(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "a.bin", []uint32{1})
	writeGraph(t, dir, "b.bin", []uint32{0})

	manifest := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"pair": ["a.bin", "b.bin"]}`), 0o600))

	cfgPath := filepath.Join(dir, "edgestream.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[store]
root = "`+filepath.ToSlash(dir)+`"

[catalog]
kind = "static"
manifest = "`+filepath.ToSlash(manifest)+`"
`), 0o600))

	edgesPath := filepath.Join(dir, "edges.txt")
	code, s, stderr := runCLI(t, "-config", cfgPath, "-graph", "pair", "-edges", edgesPath)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 2, s.Edges)

	data, err := os.ReadFile(edgesPath)
	require.NoError(t, err)
	assert.Equal(t, "0 1\n1 0\n", string(data))

	// The written edge list reads back in text mode.
	code, s, stderr = runCLI(t, "-format", "text", edgesPath)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "text", s.Format)
	assert.Equal(t, 2, s.Edges)
	assert.Equal(t, uint32(1), s.MaxNodeID)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "a", []uint32{1})

	t.Run("MissingSource", func(t *testing.T) {
		code, s, _ := runCLI(t, "-root", dir, "a", "missing")
		assert.Equal(t, 1, code)
		assert.True(t, s.Partial)
		assert.Equal(t, 1, s.Edges)
		assert.Contains(t, s.Error, "missing")
	})

	t.Run("NoSources", func(t *testing.T) {
		code, _, stderr := runCLI(t, "-root", dir)
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "no sources")
	})

	t.Run("BadFlag", func(t *testing.T) {
		code, _, _ := runCLI(t, "-shards", "two", "a")
		assert.Equal(t, 2, code)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		code, _, stderr := runCLI(t, "-self-loops", "drop", "a")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "self-loop policy")
	})

	t.Run("UnknownGraph", func(t *testing.T) {
		code, _, stderr := runCLI(t, "-root", dir, "-catalog", "listing", "-graph", "nope")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "unknown graph")
	})
}

func TestNewCodec(t *testing.T) {
	cfg := config.Default()

	c, err := newCodec(cfg)
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	cfg.Output.Codec = "go-json"
	c, err = newCodec(cfg)
	require.NoError(t, err)
	assert.Equal(t, "go-json", c.Name())

	cfg.Output.Codec = "xml"
	_, err = newCodec(cfg)
	assert.EqualError(t, err, `unknown codec "xml"`)

	code, _, stderr := runCLI(t, "-codec", "xml", "a")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown codec "xml"`)
}

func TestSplitShards(t *testing.T) {
	src := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		n    int
		want [][]string
	}{
		{0, [][]string{src}},
		{1, [][]string{src}},
		{2, [][]string{{"a", "b", "c"}, {"d", "e"}}},
		{3, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
		{5, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}},
		{9, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitShards(src, tt.n), "n=%d", tt.n)
	}
}
