package edgestream

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShardError wraps the failure of one shard in ReadShards.
type ShardError struct {
	Shard int
	Err   error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("shard %d: %v", e.Shard, e.Err)
}

func (e *ShardError) Unwrap() error { return e.Err }

// ReadShards reads consecutive slices of one logical source list in parallel
// and merges them as if they had been read sequentially.
//
// Records never span sources, so each shard decodes independently. Once all
// shards finish, the implicit source ids of shard k are shifted by the number
// of records in shards 0..k-1; neighbor ids are already global. Self-loops
// can only be recognized on global ids, so the self-loop policy is applied
// during the merge. Up to WithConcurrency shards run at once and the first
// failure cancels the rest.
//
// On failure the merged Result is Partial and covers the shards before the
// first failed one plus that shard's partial records, since later numbering
// depends on it. Under SelfLoopFail the merge ends at the first self-loop,
// exactly where a sequential read would stop.
func ReadShards(ctx context.Context, shards [][]string, opts ...Option) (*Result, error) {
	start := time.Now()
	r := NewReader(opts...)

	reads := make([]shardRead, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.concurrency)

	for i, shard := range shards {
		g.Go(func() error {
			res, spans, err := r.read(gctx, shard, r.opts.logger.WithShard(i), false)
			reads[i] = shardRead{res: res, spans: spans}
			if err != nil {
				reads[i].err = &ShardError{Shard: i, Err: err}
				return reads[i].err
			}
			return nil
		})
	}

	err := g.Wait()

	// A merge error lies earlier in the stream than any shard failure.
	merged, mergeErr := r.mergeShards(ctx, reads)
	if mergeErr != nil {
		err = mergeErr
	}

	r.opts.logger.LogRead(ctx, merged.Sources, merged.Nodes, len(merged.Edges), merged.MaxNodeID, time.Since(start), err)
	return merged, err
}

// shardRead is the outcome of one shard. A nil res means the shard never ran.
type shardRead struct {
	res   *Result
	spans []sourceSpan
	err   error
}

// locate returns the locator a shard-local node was decoded from and the
// number of sources drained before it.
func (s shardRead) locate(node uint64) (string, int) {
	i := sort.Search(len(s.spans), func(j int) bool { return s.spans[j].start > node }) - 1
	if i < 0 {
		return "", 0
	}
	return s.spans[i].locator, i
}

// mergeShards renumbers and concatenates shard results in order, applying
// the self-loop policy to the renumbered edges. It stops after the first
// shard that failed or never ran.
func (r *Reader) mergeShards(ctx context.Context, reads []shardRead) (*Result, error) {
	merged := &Result{}
	defer finalizeMax(merged)

	edges := 0
	for _, sr := range reads {
		if sr.res != nil {
			edges += len(sr.res.Edges)
		}
	}
	merged.Edges = make(EdgeList, 0, edges)

	for i, sr := range reads {
		res := sr.res
		if res == nil {
			merged.Partial = true
			return merged, nil
		}

		offset := merged.Nodes
		if offset+res.Nodes > math.MaxUint32+1 {
			merged.Partial = true
			return merged, &ShardError{Shard: i, Err: ErrNodeIDOverflow}
		}

		for _, e := range res.Edges {
			local := uint64(e.Source)
			e.Source += uint32(offset)
			if e.Source == e.Target {
				if err := r.mergeSelfLoop(ctx, merged, sr, local, e.Source); err != nil {
					merged.Nodes = offset + local
					merged.MaxNodeID = max(merged.MaxNodeID, e.Source)
					_, drained := sr.locate(local)
					merged.Sources += drained
					merged.Partial = true
					return merged, &ShardError{Shard: i, Err: err}
				}
			}
			merged.MaxNodeID = max(merged.MaxNodeID, e.Target)
			merged.Edges = append(merged.Edges, e)
		}
		merged.Nodes += res.Nodes
		merged.Sources += res.Sources

		if sr.err != nil {
			merged.Partial = true
			return merged, nil
		}
	}

	return merged, nil
}

// mergeSelfLoop applies the self-loop policy to a renumbered edge node -> node.
func (r *Reader) mergeSelfLoop(ctx context.Context, merged *Result, sr shardRead, local uint64, node uint32) error {
	r.opts.metricsCollector.RecordSelfLoop()
	locator, _ := sr.locate(local)

	switch r.opts.selfLoopPolicy {
	case SelfLoopFail:
		return &SelfLoopError{Locator: locator, Node: node}
	case SelfLoopWarn:
		r.opts.logger.LogSelfLoop(ctx, locator, node)
	}
	merged.SelfLoops++
	return nil
}

// finalizeMax folds the largest implicit id into MaxNodeID.
func finalizeMax(res *Result) {
	if res.Nodes > 0 {
		res.MaxNodeID = max(res.MaxNodeID, uint32(res.Nodes-1))
	}
}
