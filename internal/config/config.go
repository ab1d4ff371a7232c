// Package config loads the edgestream command configuration.
//
// Values come from, in increasing precedence: built-in defaults, a TOML file,
// and environment variables prefixed with EDGESTREAM_. Command-line flags are
// applied on top by the command itself.
//
// TOML format:
//
//	[store]
//	kind = "s3"
//	bucket = "graphs"
//	prefix = "web-2024/"
//
//	[read]
//	self_loops = "warn"
//	shards = 4
//	concurrency = 4
//
//	[catalog]
//	kind = "dynamodb"
//	table = "edgestream-catalog"
package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/edgestream"
	"github.com/hupe1980/edgestream/codec"
)

// Config holds the command configuration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Read    ReadConfig    `toml:"read"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
	Output  OutputConfig  `toml:"output"`
}

// StoreConfig selects where sources are read from.
type StoreConfig struct {
	Kind                string `toml:"kind"` // local, s3 or minio
	Root                string `toml:"root"`
	Bucket              string `toml:"bucket"`
	Prefix              string `toml:"prefix"`
	Region              string `toml:"region"`
	Endpoint            string `toml:"endpoint"`
	UsePathStyle        bool   `toml:"use_path_style"`
	AccessKey           string `toml:"access_key"`
	SecretKey           string `toml:"secret_key"`
	Secure              bool   `toml:"secure"`
	PrefetchThreshold   int64  `toml:"prefetch_threshold"`
	PrefetchConcurrency int    `toml:"prefetch_concurrency"`
}

// ReadConfig controls decoding.
type ReadConfig struct {
	Format      string `toml:"format"`     // binary or text
	SkipLines   int    `toml:"skip_lines"` // text only
	SelfLoops   string `toml:"self_loops"`
	ByteOrder   string `toml:"byte_order"` // native, little or big
	BufferSize  int    `toml:"buffer_size"`
	IOLimit     int64  `toml:"io_limit"`
	Decompress  bool   `toml:"decompress"`
	Shards      int    `toml:"shards"`
	Concurrency int    `toml:"concurrency"`
}

// CatalogConfig selects how a graph name is resolved to sources.
type CatalogConfig struct {
	Kind     string `toml:"kind"` // none, static, listing or dynamodb
	Manifest string `toml:"manifest"`
	Table    string `toml:"table"`
	Region   string `toml:"region"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// OutputConfig controls what the command writes.
type OutputConfig struct {
	Codec         string `toml:"codec"`
	Neighborhoods bool   `toml:"neighborhoods"`
	Edges         string `toml:"edges"` // optional text edge list path
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Kind:                "local",
			PrefetchConcurrency: 5,
		},
		Read: ReadConfig{
			Format:      "binary",
			SelfLoops:   "warn",
			ByteOrder:   "native",
			Decompress:  true,
			Shards:      1,
			Concurrency: 1,
		},
		Catalog: CatalogConfig{Kind: "none"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{Codec: "json"},
	}
}

// Load builds a configuration from defaults, the TOML file at path (if not
// empty) and the environment. Callers apply their own overrides and then call
// Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("load config file %q: unknown keys %v", path, undecoded)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from EDGESTREAM_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("EDGESTREAM_STORE", &c.Store.Kind)
	e.str("EDGESTREAM_ROOT", &c.Store.Root)
	e.str("EDGESTREAM_BUCKET", &c.Store.Bucket)
	e.str("EDGESTREAM_PREFIX", &c.Store.Prefix)
	e.str("EDGESTREAM_REGION", &c.Store.Region)
	e.str("EDGESTREAM_ENDPOINT", &c.Store.Endpoint)
	e.str("EDGESTREAM_ACCESS_KEY", &c.Store.AccessKey)
	e.str("EDGESTREAM_SECRET_KEY", &c.Store.SecretKey)
	e.boolean("EDGESTREAM_SECURE", &c.Store.Secure)

	e.str("EDGESTREAM_FORMAT", &c.Read.Format)
	e.str("EDGESTREAM_SELF_LOOPS", &c.Read.SelfLoops)
	e.str("EDGESTREAM_BYTE_ORDER", &c.Read.ByteOrder)
	e.integer64("EDGESTREAM_IO_LIMIT", &c.Read.IOLimit)
	e.boolean("EDGESTREAM_DECOMPRESS", &c.Read.Decompress)
	e.integer("EDGESTREAM_SHARDS", &c.Read.Shards)
	e.integer("EDGESTREAM_CONCURRENCY", &c.Read.Concurrency)

	e.str("EDGESTREAM_CATALOG", &c.Catalog.Kind)
	e.str("EDGESTREAM_CATALOG_MANIFEST", &c.Catalog.Manifest)
	e.str("EDGESTREAM_CATALOG_TABLE", &c.Catalog.Table)

	e.str("EDGESTREAM_LOG_LEVEL", &c.Log.Level)
	e.str("EDGESTREAM_LOG_FORMAT", &c.Log.Format)
	e.str("EDGESTREAM_CODEC", &c.Output.Codec)

	return e.err
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Kind {
	case "local":
	case "s3", "minio":
		if c.Store.Bucket == "" {
			errs = append(errs, fmt.Errorf("store %s requires a bucket", c.Store.Kind))
		}
		if c.Store.Kind == "minio" && c.Store.Endpoint == "" {
			errs = append(errs, errors.New("store minio requires an endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}

	switch c.Read.Format {
	case "binary", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Read.Format))
	}
	if _, ok := edgestream.ParseSelfLoopPolicy(c.Read.SelfLoops); !ok {
		errs = append(errs, fmt.Errorf("unknown self-loop policy %q", c.Read.SelfLoops))
	}
	if _, err := parseByteOrder(c.Read.ByteOrder); err != nil {
		errs = append(errs, err)
	}
	if c.Read.Shards < 1 {
		errs = append(errs, errors.New("shards must be at least 1"))
	}
	if c.Read.SkipLines < 0 || c.Read.BufferSize < 0 || c.Read.IOLimit < 0 {
		errs = append(errs, errors.New("skip_lines, buffer_size and io_limit must not be negative"))
	}

	switch c.Catalog.Kind {
	case "none", "listing":
	case "static":
		if c.Catalog.Manifest == "" {
			errs = append(errs, errors.New("catalog static requires a manifest"))
		}
	case "dynamodb":
		if c.Catalog.Table == "" {
			errs = append(errs, errors.New("catalog dynamodb requires a table"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog kind %q", c.Catalog.Kind))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if _, ok := codec.ByName(c.Output.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Output.Codec))
	}

	return errors.Join(errs...)
}

// SelfLoopPolicy returns the parsed self-loop policy.
func (c *Config) SelfLoopPolicy() edgestream.SelfLoopPolicy {
	p, _ := edgestream.ParseSelfLoopPolicy(c.Read.SelfLoops)
	return p
}

// ByteOrder returns the parsed neighbor byte order.
func (c *Config) ByteOrder() binary.ByteOrder {
	order, err := parseByteOrder(c.Read.ByteOrder)
	if err != nil {
		return binary.NativeEndian
	}
	return order
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

func parseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "native", "":
		return binary.NativeEndian, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", s)
	}
}

// envReader collects the first conversion error.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) integer64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
}
