package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/edgestream/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	bucket := "test-edgestream"

	store, err := New("localhost:9000", bucket, Config{
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Prefix:    "test-prefix/",
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte{0x02, 1, 0, 0, 0, 2, 0, 0, 0}
	require.NoError(t, store.Put(ctx, "part-000.bin", data))
	require.NoError(t, store.Put(ctx, "part-001.bin", []byte{0x00}))
	defer func() {
		_ = store.Delete(ctx, "part-000.bin")
		_ = store.Delete(ctx, "part-001.bin")
	}()

	blob, err := store.Open(ctx, "part-000.bin")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 1)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 0, 0, 0}, buf)
	require.NoError(t, blob.Close())

	rc, err := blobstore.NewReader(ctx, store, "part-000.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "part-")
	require.NoError(t, err)
	assert.Equal(t, []string{"part-000.bin", "part-001.bin"}, names)

	require.NoError(t, store.Delete(ctx, "part-001.bin"))
	_, err = store.Open(ctx, "part-001.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
