// Package catalog resolves a graph name to the ordered list of sources that
// make up its binary stream.
//
// Order matters: node ids are implicit and continue across sources, so a
// catalog must always return the parts in the order they were written.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/hupe1980/edgestream/blobstore"
	"github.com/hupe1980/edgestream/codec"
)

// ErrUnknownGraph is returned when a catalog has no sources for a graph.
var ErrUnknownGraph = errors.New("catalog: unknown graph")

// Catalog looks up the sources of a graph.
type Catalog interface {
	Sources(ctx context.Context, graph string) ([]string, error)
}

// Static is an in-memory catalog.
type Static map[string][]string

// Sources implements Catalog. The returned slice is a copy.
func (s Static) Sources(_ context.Context, graph string) ([]string, error) {
	parts, ok := s[graph]
	if !ok || len(parts) == 0 {
		return nil, ErrUnknownGraph
	}
	return append([]string(nil), parts...), nil
}

// LoadStatic decodes a JSON manifest of the form
//
//	{"web-2024": ["web-2024/part-000", "web-2024/part-001"]}
//
// using c, or codec.Default when c is nil.
func LoadStatic(data []byte, c codec.Codec) (Static, error) {
	if c == nil {
		c = codec.Default
	}
	var s Static
	if err := c.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// Listing derives sources from blob names: every blob under "<graph>/" in
// store, in lexical order. Part names must therefore sort in write order,
// e.g. zero-padded indices.
type Listing struct {
	Store blobstore.BlobStore
}

// Sources implements Catalog.
func (l Listing) Sources(ctx context.Context, graph string) ([]string, error) {
	prefix := strings.TrimSuffix(graph, "/") + "/"

	names, err := l.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrUnknownGraph
	}
	return names, nil
}
