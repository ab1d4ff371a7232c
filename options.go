package edgestream

import (
	"encoding/binary"
	"log/slog"

	"github.com/hupe1980/edgestream/blobstore"
	"github.com/hupe1980/edgestream/internal/stream"
	"golang.org/x/time/rate"
)

// SelfLoopPolicy decides what happens when a node lists itself as a neighbor.
type SelfLoopPolicy int

const (
	// SelfLoopWarn keeps the edge, logs a warning and counts it. This is the default.
	SelfLoopWarn SelfLoopPolicy = iota
	// SelfLoopKeep keeps the edge silently (it is still counted).
	SelfLoopKeep
	// SelfLoopFail aborts the read with a *SelfLoopError.
	SelfLoopFail
)

func (p SelfLoopPolicy) String() string {
	switch p {
	case SelfLoopKeep:
		return "keep"
	case SelfLoopFail:
		return "fail"
	default:
		return "warn"
	}
}

// ParseSelfLoopPolicy parses "warn", "keep" or "fail".
func ParseSelfLoopPolicy(s string) (SelfLoopPolicy, bool) {
	switch s {
	case "warn", "":
		return SelfLoopWarn, true
	case "keep":
		return SelfLoopKeep, true
	case "fail":
		return SelfLoopFail, true
	default:
		return SelfLoopWarn, false
	}
}

type options struct {
	store            blobstore.BlobStore
	logger           *Logger
	metricsCollector MetricsCollector
	selfLoopPolicy   SelfLoopPolicy
	byteOrder        binary.ByteOrder
	bufferSize       int
	ioLimit          int64
	decompress       bool
	concurrency      int

	// limiter is shared by every stream of a Read or ReadShards call.
	limiter *rate.Limiter
}

// Option configures Reader, ReadBinaryGraph and ReadShards.
type Option func(*options)

// WithStore resolves source locators through store.
//
// If nil is passed, locators are treated as local file paths.
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		if store == nil {
			store = blobstore.NewLocalStore("")
		}
		o.store = store
	}
}

// WithLogger configures structured logging for read operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := edgestream.NewJSONLogger(slog.LevelInfo)
//	res, err := edgestream.ReadBinaryGraph(ctx, parts, edgestream.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSelfLoopPolicy sets how self-loops are handled. Defaults to SelfLoopWarn.
func WithSelfLoopPolicy(p SelfLoopPolicy) Option {
	return func(o *options) {
		o.selfLoopPolicy = p
	}
}

// WithByteOrder sets the byte order of the 4-byte neighbor ids.
// Defaults to the host's native order, matching the writer.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.byteOrder = order
		}
	}
}

// WithBufferSize sets the per-stream read buffer size in bytes.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

// WithIOLimit caps the raw read throughput in bytes per second across all
// streams of one call. 0 disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithDecompression toggles transparent decompression of sources whose
// locator ends in .zst, .gz, .s2, .sz or .lz4. Enabled by default.
func WithDecompression(enabled bool) Option {
	return func(o *options) {
		o.decompress = enabled
	}
}

// WithConcurrency sets how many shards ReadShards reads in parallel.
// Values <= 0 mean one shard at a time.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		store:            blobstore.NewLocalStore(""),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		selfLoopPolicy:   SelfLoopWarn,
		byteOrder:        binary.NativeEndian,
		bufferSize:       stream.DefaultBufferSize,
		decompress:       true,
		concurrency:      1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}
	o.limiter = stream.NewLimiter(o.ioLimit)
	return o
}
