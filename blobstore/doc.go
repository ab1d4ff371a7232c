// Package blobstore provides the storage abstraction behind graph sources.
//
// A source locator handed to the reader is a blob name resolved by a
// BlobStore. Implementations must be safe for concurrent use so that sharded
// loads can open blobs from several goroutines.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - MemoryStore: in-memory, for tests and tooling
//   - s3.Store: Amazon S3 with ranged reads and optional parallel prefetch
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs are consumed front to back through ReadRange:
//
//	type Blob interface {
//	    io.Closer
//	    Size() int64
//	    ReadAt(ctx, p, off) (int, error)
//	    ReadRange(ctx, off, len) (io.ReadCloser, error)
//	}
package blobstore
