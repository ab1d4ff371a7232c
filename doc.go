// Package edgestream reads directed graphs stored as a compact binary stream of
// degree records, possibly split across many files or objects.
//
// # Format
//
// A graph is a sequence of records, one per node, with no header or footer:
//
//	varint(degree) || degree × uint32(neighbor)
//
// The degree is an unsigned base-128 varint (at most 10 bytes). Neighbor ids
// are 4 bytes in the writer's byte order (native by default, see
// WithByteOrder). The node a record belongs to is implicit: the N-th record in
// the logical stream is node N, counted across all sources in order. A source
// never splits a record, and an empty source contributes no node.
//
// # Quick Start
//
//	ctx := context.Background()
//	res, err := edgestream.ReadBinaryGraph(ctx, []string{"graph.bin.0", "graph.bin.1"})
//	if err != nil {
//	    // res.Partial is set and res holds everything decoded so far.
//	}
//	for _, e := range res.Edges {
//	    fmt.Println(e.Source, e.Target)
//	}
//
// # Sources
//
// Locators are resolved through a blobstore.BlobStore. The default is the
// local file system with locators used as paths. Objects in S3 or MinIO are
// read with blobstore/s3 and blobstore/minio:
//
//	store, _ := s3.New(ctx, "graphs", s3.WithPrefix("web-2024/"))
//	res, err := edgestream.ReadBinaryGraph(ctx, parts, edgestream.WithStore(store))
//
// Sources ending in .zst, .gz, .s2, .sz or .lz4 are decompressed on the fly.
//
// # Parallel Loading
//
// ReadShards reads consecutive groups of sources concurrently and renumbers
// them afterwards, producing the same Result as a sequential read:
//
//	res, err := edgestream.ReadShards(ctx, [][]string{parts[:8], parts[8:]},
//	    edgestream.WithStore(store), edgestream.WithConcurrency(2))
//
// # Errors
//
// Reads stop at the first failure. The error is one of *OpenError,
// *TruncatedReadError, ErrOverflow (wrapped), *SelfLoopError (only with
// SelfLoopFail), ErrNodeIDOverflow, a context error, or, from ReadShards, a
// *ShardError wrapping one of these.
//
// # Observability
//
// WithLogger attaches a slog-based Logger and WithMetrics a MetricsCollector.
// Both are no-ops by default.
package edgestream
