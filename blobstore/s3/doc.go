// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("graphs/web-2024/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	res, err := edgestream.ReadBinaryGraph(ctx, parts, edgestream.WithStore(store))
//
// # Features
//
//   - Ranged GETs, so a graph part streams without being buffered whole
//   - Optional prefetch that downloads small parts with parallel range requests
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
