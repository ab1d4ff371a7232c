// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "graphs", minioblob.Config{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Prefix:    "web-2024/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := edgestream.ReadBinaryGraph(ctx, parts, edgestream.WithStore(store))
package minio
