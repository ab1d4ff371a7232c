package edgestream

import "context"

// Edge is a directed pair of node ids as stored in the stream.
type Edge struct {
	Source uint32
	Target uint32
}

// EdgeList holds edges in discovery order.
type EdgeList []Edge

// Result is the outcome of a read.
type Result struct {
	// Edges in the order they were decoded.
	Edges EdgeList
	// MaxNodeID is the largest id seen, as an implicit source or as a neighbor.
	MaxNodeID uint32
	// Nodes is the number of degree records read.
	Nodes uint64
	// Sources is the number of sources fully drained.
	Sources int
	// SelfLoops counts edges with Source == Target.
	SelfLoops int
	// Partial is set when the read stopped on an error. The fields above then
	// describe what was decoded before the failure.
	Partial bool
}

// NumNodes returns the size of a node-indexed table covering every id seen,
// i.e. MaxNodeID+1, or 0 when nothing was read.
func (r *Result) NumNodes() int {
	if r.Nodes == 0 && len(r.Edges) == 0 {
		return 0
	}
	return int(r.MaxNodeID) + 1
}

// ReadBinaryGraph reads sources as one logical stream of degree records.
//
// It is shorthand for NewReader(opts...).Read(ctx, sources). On failure the
// returned Result is non-nil, has Partial set, and holds everything decoded
// before the error.
func ReadBinaryGraph(ctx context.Context, sources []string, opts ...Option) (*Result, error) {
	return NewReader(opts...).Read(ctx, sources)
}
