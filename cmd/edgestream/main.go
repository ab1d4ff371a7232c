// Command edgestream loads a graph from binary degree-record streams (or a
// text edge list) and prints a summary.
//
// Usage:
//
//	edgestream [flags] source...
//	edgestream [flags] -graph name
//
// Sources are resolved through the configured store (local files, S3 or
// MinIO). With -graph, the source list comes from the configured catalog.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hupe1980/edgestream"
	"github.com/hupe1980/edgestream/blobstore"
	"github.com/hupe1980/edgestream/blobstore/minio"
	s3store "github.com/hupe1980/edgestream/blobstore/s3"
	"github.com/hupe1980/edgestream/catalog"
	"github.com/hupe1980/edgestream/codec"
	"github.com/hupe1980/edgestream/internal/config"
	"github.com/hupe1980/edgestream/neighborhood"
	"github.com/hupe1980/edgestream/textgraph"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Summary is the document printed after a read.
type Summary struct {
	Graph     string   `json:"graph,omitempty"`
	Sources   []string `json:"sources"`
	Format    string   `json:"format"`
	Shards    int      `json:"shards"`
	Edges     int      `json:"edges"`
	Nodes     uint64   `json:"nodes"`
	MaxNodeID uint32   `json:"max_node_id"`
	SelfLoops int      `json:"self_loops"`
	Partial   bool     `json:"partial"`
	Error     string   `json:"error,omitempty"`
	Duration  string   `json:"duration"`

	Bytes int64 `json:"bytes,omitempty"`

	Neighborhoods *NeighborhoodSummary `json:"neighborhoods,omitempty"`
}

// NeighborhoodSummary describes the undirected view of the graph.
type NeighborhoodSummary struct {
	Nodes           int    `json:"nodes"`
	Isolated        int    `json:"isolated"`
	UndirectedEdges uint64 `json:"undirected_edges"`
	MaxDegree       int    `json:"max_degree"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edgestream", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to a TOML config file")
	graph := fs.String("graph", "", "resolve sources of this graph through the catalog")

	// Overrides, applied only when set.
	fs.String("store", "", "store kind: local, s3 or minio (overrides EDGESTREAM_STORE)")
	fs.String("root", "", "local store root directory (overrides EDGESTREAM_ROOT)")
	fs.String("bucket", "", "bucket for s3 and minio (overrides EDGESTREAM_BUCKET)")
	fs.String("prefix", "", "key prefix for s3 and minio (overrides EDGESTREAM_PREFIX)")
	fs.String("endpoint", "", "custom endpoint for s3 or minio (overrides EDGESTREAM_ENDPOINT)")
	fs.String("region", "", "AWS region (overrides EDGESTREAM_REGION)")
	fs.String("catalog", "", "catalog kind: none, static, listing or dynamodb (overrides EDGESTREAM_CATALOG)")
	fs.String("format", "", "input format: binary or text (overrides EDGESTREAM_FORMAT)")
	fs.Int("skip-lines", 0, "header lines to skip in text input")
	fs.String("self-loops", "", "self-loop policy: warn, keep or fail (overrides EDGESTREAM_SELF_LOOPS)")
	fs.String("byte-order", "", "neighbor byte order: native, little or big (overrides EDGESTREAM_BYTE_ORDER)")
	fs.Int("shards", 0, "split the sources into this many shards read in parallel (overrides EDGESTREAM_SHARDS)")
	fs.Int("concurrency", 0, "shards read at once (overrides EDGESTREAM_CONCURRENCY)")
	fs.Int64("io-limit", 0, "raw read throughput limit in bytes per second (overrides EDGESTREAM_IO_LIMIT)")
	fs.Bool("decompress", true, "decompress .zst, .gz, .s2, .sz and .lz4 sources (overrides EDGESTREAM_DECOMPRESS)")
	fs.String("log-level", "", "log level (overrides EDGESTREAM_LOG_LEVEL)")
	fs.String("log-format", "", "log format: text or json (overrides EDGESTREAM_LOG_FORMAT)")
	fs.String("codec", "", "summary codec: json or go-json (overrides EDGESTREAM_CODEC)")
	fs.Bool("neighborhoods", false, "build undirected neighborhoods and summarize them")
	fs.String("edges", "", "also write the edge list as text to this path")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "edgestream: %v\n", err)
		return 2
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "edgestream: %v\n", err)
		return 2
	}

	c, err := newCodec(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "edgestream: %v\n", err)
		return 2
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("store setup failed", "error", err)
		return 1
	}

	sources := fs.Args()
	if *graph != "" {
		sources, err = resolveSources(ctx, cfg, store, c, *graph)
		if err != nil {
			logger.Error("catalog lookup failed", "graph", *graph, "error", err)
			return 1
		}
	}
	if len(sources) == 0 {
		fmt.Fprintln(stderr, "edgestream: no sources given")
		fs.Usage()
		return 2
	}

	summary, res, readErr := load(ctx, cfg, store, logger, sources)
	summary.Graph = *graph

	if res != nil && cfg.Output.Neighborhoods {
		summary.Neighborhoods = summarizeNeighborhoods(neighborhood.FromResult(res))
	}

	if res != nil && cfg.Output.Edges != "" {
		if err := writeEdges(cfg.Output.Edges, res.Edges); err != nil {
			logger.Error("writing edge list failed", "path", cfg.Output.Edges, "error", err)
			if readErr == nil {
				readErr = err
			}
		}
	}

	out, err := c.Marshal(summary)
	if err != nil {
		logger.Error("encoding summary failed", "codec", c.Name(), "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s\n", out)

	if readErr != nil {
		return 1
	}
	return 0
}

// loadConfig loads file and environment settings, then applies the flags
// that were set explicitly.
func loadConfig(path string, fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	var errs []error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "store":
			cfg.Store.Kind = v
		case "root":
			cfg.Store.Root = v
		case "bucket":
			cfg.Store.Bucket = v
		case "prefix":
			cfg.Store.Prefix = v
		case "endpoint":
			cfg.Store.Endpoint = v
		case "region":
			cfg.Store.Region = v
			cfg.Catalog.Region = v
		case "catalog":
			cfg.Catalog.Kind = v
		case "format":
			cfg.Read.Format = v
		case "self-loops":
			cfg.Read.SelfLoops = v
		case "byte-order":
			cfg.Read.ByteOrder = v
		case "log-level":
			cfg.Log.Level = v
		case "log-format":
			cfg.Log.Format = v
		case "codec":
			cfg.Output.Codec = v
		case "edges":
			cfg.Output.Edges = v
		case "skip-lines", "shards", "concurrency":
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("-%s: %w", f.Name, err))
				return
			}
			switch f.Name {
			case "skip-lines":
				cfg.Read.SkipLines = n
			case "shards":
				cfg.Read.Shards = n
			default:
				cfg.Read.Concurrency = n
			}
		case "io-limit":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("-%s: %w", f.Name, err))
				return
			}
			cfg.Read.IOLimit = n
		case "decompress", "neighborhoods":
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("-%s: %w", f.Name, err))
				return
			}
			if f.Name == "decompress" {
				cfg.Read.Decompress = b
			} else {
				cfg.Output.Neighborhoods = b
			}
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, w io.Writer) (*edgestream.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return edgestream.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return edgestream.NewLogger(slog.NewTextHandler(w, opts)), nil
}

func newCodec(cfg *config.Config) (codec.Codec, error) {
	c, ok := codec.ByName(cfg.Output.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.Output.Codec)
	}
	return c, nil
}

func newStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	sc := cfg.Store
	switch sc.Kind {
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(sc.Prefix), s3store.WithRegion(sc.Region)}
		if sc.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(sc.Endpoint))
		}
		if sc.UsePathStyle {
			opts = append(opts, func(o *s3store.Options) { o.UsePathStyle = true })
		}
		if sc.PrefetchThreshold > 0 {
			opts = append(opts, s3store.WithPrefetch(sc.PrefetchThreshold, sc.PrefetchConcurrency))
		}
		store, err := s3store.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := minio.New(sc.Endpoint, sc.Bucket, minio.Config{
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Secure:    sc.Secure,
			Region:    sc.Region,
			Prefix:    sc.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return blobstore.NewLocalStore(sc.Root), nil
	}
}

func resolveSources(ctx context.Context, cfg *config.Config, store blobstore.BlobStore, c codec.Codec, graph string) ([]string, error) {
	var cat catalog.Catalog

	switch cfg.Catalog.Kind {
	case "static":
		data, err := os.ReadFile(cfg.Catalog.Manifest)
		if err != nil {
			return nil, err
		}
		static, err := catalog.LoadStatic(data, c)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", cfg.Catalog.Manifest, err)
		}
		cat = static
	case "dynamodb":
		ddb, err := catalog.OpenDynamoDB(ctx, cfg.Catalog.Table, cfg.Catalog.Region)
		if err != nil {
			return nil, err
		}
		cat = ddb
	default:
		cat = catalog.Listing{Store: store}
	}

	return cat.Sources(ctx, graph)
}

func load(ctx context.Context, cfg *config.Config, store blobstore.BlobStore, logger *edgestream.Logger, sources []string) (*Summary, *edgestream.Result, error) {
	start := time.Now()
	summary := &Summary{
		Sources: sources,
		Format:  cfg.Read.Format,
		Shards:  1,
	}

	var (
		res *edgestream.Result
		err error
	)

	if cfg.Read.Format == "text" {
		res, err = loadText(ctx, store, sources, cfg.Read.SkipLines)
	} else {
		mc := &edgestream.BasicMetricsCollector{}
		opts := []edgestream.Option{
			edgestream.WithStore(store),
			edgestream.WithLogger(logger),
			edgestream.WithMetrics(mc),
			edgestream.WithSelfLoopPolicy(cfg.SelfLoopPolicy()),
			edgestream.WithByteOrder(cfg.ByteOrder()),
			edgestream.WithIOLimit(cfg.Read.IOLimit),
			edgestream.WithDecompression(cfg.Read.Decompress),
			edgestream.WithConcurrency(cfg.Read.Concurrency),
		}
		if cfg.Read.BufferSize > 0 {
			opts = append(opts, edgestream.WithBufferSize(cfg.Read.BufferSize))
		}

		if cfg.Read.Shards > 1 {
			shards := splitShards(sources, cfg.Read.Shards)
			summary.Shards = len(shards)
			res, err = edgestream.ReadShards(ctx, shards, opts...)
		} else {
			res, err = edgestream.ReadBinaryGraph(ctx, sources, opts...)
		}
		summary.Bytes = mc.GetStats().SourceBytes
	}

	summary.Duration = time.Since(start).String()
	if res != nil {
		summary.Edges = len(res.Edges)
		summary.Nodes = res.Nodes
		summary.MaxNodeID = res.MaxNodeID
		summary.SelfLoops = res.SelfLoops
		summary.Partial = res.Partial
	}
	if err != nil {
		summary.Error = err.Error()
	}
	return summary, res, err
}

// loadText concatenates text edge lists. Header lines are skipped in each.
func loadText(ctx context.Context, store blobstore.BlobStore, sources []string, skipLines int) (*edgestream.Result, error) {
	merged := &edgestream.Result{}
	for i, src := range sources {
		res, err := textgraph.Load(ctx, store, src, skipLines)
		merged.Edges = append(merged.Edges, res.Edges...)
		merged.MaxNodeID = max(merged.MaxNodeID, res.MaxNodeID)
		merged.SelfLoops += res.SelfLoops
		merged.Sources += res.Sources
		if err != nil {
			var oe *edgestream.OpenError
			if errors.As(err, &oe) {
				oe.Index = i
			}
			merged.Partial = true
			return merged, err
		}
	}
	return merged, nil
}

// splitShards cuts sources into at most n contiguous, near-equal groups.
func splitShards(sources []string, n int) [][]string {
	n = min(n, len(sources))
	if n <= 1 {
		return [][]string{sources}
	}

	shards := make([][]string, 0, n)
	size, rest := len(sources)/n, len(sources)%n
	for i, start := 0, 0; i < n; i++ {
		end := start + size
		if i < rest {
			end++
		}
		shards = append(shards, sources[start:end])
		start = end
	}
	return shards
}

func summarizeNeighborhoods(n neighborhood.Neighborhoods) *NeighborhoodSummary {
	s := &NeighborhoodSummary{Nodes: n.Len(), UndirectedEdges: n.Edges()}
	for u := range n.Len() {
		d := n.Degree(uint32(u))
		if d == 0 {
			s.Isolated++
		}
		s.MaxDegree = max(s.MaxDegree, d)
	}
	return s
}

func writeEdges(path string, edges edgestream.EdgeList) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	var buf []byte
	for _, e := range edges {
		buf = strconv.AppendUint(buf[:0], uint64(e.Source), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(e.Target), 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}
