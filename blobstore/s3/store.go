package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/edgestream/blobstore"
)

// Options configures a Store created with New.
type Options struct {
	// Prefix is prepended to all keys (e.g. "graphs/web/").
	Prefix string
	// Region overrides the region from the shared AWS config.
	Region string
	// Endpoint overrides the S3 endpoint (e.g. for LocalStack).
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
	// PrefetchThreshold enables prefetch for objects up to this size in bytes.
	// Prefetched objects are downloaded in parallel parts and served from memory.
	// 0 disables prefetch.
	PrefetchThreshold int64
	// PrefetchConcurrency is the number of parallel part downloads. Defaults to
	// manager.DefaultDownloadConcurrency.
	PrefetchConcurrency int
}

// Option configures New.
type Option func(*Options)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint and switches to path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = true
	}
}

// WithPrefetch downloads objects up to threshold bytes in parallel parts on Open.
func WithPrefetch(threshold int64, concurrency int) Option {
	return func(o *Options) {
		o.PrefetchThreshold = threshold
		o.PrefetchConcurrency = concurrency
	}
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client Client
	bucket string
	prefix string

	prefetchThreshold int64
	downloader        *manager.Downloader
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.UsePathStyle
	})

	s := NewStore(client, bucket, o.Prefix)
	if o.PrefetchThreshold > 0 {
		s.EnablePrefetch(o.PrefetchThreshold, o.PrefetchConcurrency)
	}
	return s, nil
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "graphs/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// EnablePrefetch makes Open download objects up to threshold bytes eagerly,
// using concurrency parallel range requests.
func (s *Store) EnablePrefetch(threshold int64, concurrency int) {
	s.prefetchThreshold = threshold
	s.downloader = manager.NewDownloader(s.client, func(d *manager.Downloader) {
		if concurrency > 0 {
			d.Concurrency = concurrency
		}
	})
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// listPrefix maps a List prefix to an object key prefix. A trailing slash is
// kept so that "g/" does not match "gx/".
func (s *Store) listPrefix(prefix string) string {
	full := s.key(prefix)
	if strings.HasSuffix(prefix, "/") && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	return full
}

// Open opens an object for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	size, err := headObject(ctx, s.client, s.bucket, key)
	if err != nil {
		return nil, err
	}

	if s.downloader != nil && size > 0 && size <= s.prefetchThreshold {
		return s.prefetch(ctx, key, size)
	}

	return &baseBlob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   size,
	}, nil
}

func (s *Store) prefetch(ctx context.Context, key string, size int64) (blobstore.Blob, error) {
	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: prefetch %s: %w", key, err)
	}
	return blobstore.NewBytesBlob(buf.Bytes()[:n]), nil
}

// List returns all object names under prefix, relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.listPrefix(prefix), s.prefix)
}
