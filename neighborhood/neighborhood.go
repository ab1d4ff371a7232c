// Package neighborhood builds undirected adjacency sets from a decoded edge
// list.
//
// Each node's neighbors are kept in a roaring bitmap, so duplicate edges and
// the two directions of a reciprocal pair collapse into one entry.
package neighborhood

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/edgestream"
)

// Neighborhoods maps node ids to their undirected neighbor sets.
// Isolated nodes have a nil entry.
type Neighborhoods []*roaring.Bitmap

// Build inserts every edge in both directions. The table covers ids
// 0..maxNodeID and grows if an edge names a larger id.
func Build(edges edgestream.EdgeList, maxNodeID uint32) Neighborhoods {
	n := make(Neighborhoods, int(maxNodeID)+1)
	for _, e := range edges {
		n = n.add(e.Source, e.Target)
		n = n.add(e.Target, e.Source)
	}
	return n
}

// FromResult builds neighborhoods for every node a read discovered.
func FromResult(res *edgestream.Result) Neighborhoods {
	if res.NumNodes() == 0 {
		return Neighborhoods{}
	}
	return Build(res.Edges, res.MaxNodeID)
}

func (n Neighborhoods) add(u, v uint32) Neighborhoods {
	if int(u) >= len(n) {
		grown := make(Neighborhoods, int(u)+1)
		copy(grown, n)
		n = grown
	}
	if n[u] == nil {
		n[u] = roaring.New()
	}
	n[u].Add(v)
	return n
}

// Len returns the number of node slots.
func (n Neighborhoods) Len() int { return len(n) }

// Degree returns the number of distinct neighbors of u.
func (n Neighborhoods) Degree(u uint32) int {
	if int(u) >= len(n) || n[u] == nil {
		return 0
	}
	return int(n[u].GetCardinality())
}

// Contains reports whether u and v are adjacent.
func (n Neighborhoods) Contains(u, v uint32) bool {
	if int(u) >= len(n) || n[u] == nil {
		return false
	}
	return n[u].Contains(v)
}

// Neighbors iterates the neighbors of u in ascending order.
func (n Neighborhoods) Neighbors(u uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if int(u) >= len(n) || n[u] == nil {
			return
		}
		it := n[u].Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Edges returns the number of undirected edges. A self-loop counts once.
func (n Neighborhoods) Edges() uint64 {
	var ends, loops uint64
	for u, b := range n {
		if b == nil {
			continue
		}
		ends += b.GetCardinality()
		if b.Contains(uint32(u)) {
			loops++
		}
	}
	return (ends-loops)/2 + loops
}
