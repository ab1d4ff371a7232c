package config

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/edgestream"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edgestream.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Store.Kind)
	assert.Equal(t, "binary", cfg.Read.Format)
	assert.True(t, cfg.Read.Decompress)
	assert.Equal(t, 1, cfg.Read.Shards)
	assert.Equal(t, edgestream.SelfLoopWarn, cfg.SelfLoopPolicy())
	assert.Equal(t, binary.ByteOrder(binary.NativeEndian), cfg.ByteOrder())

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[store]
kind = "s3"
bucket = "graphs"
prefix = "web/"
prefetch_threshold = 1048576

[read]
self_loops = "fail"
byte_order = "big"
shards = 4
concurrency = 2
decompress = false

[catalog]
kind = "dynamodb"
table = "catalog"

[log]
level = "debug"
format = "json"

[output]
codec = "go-json"
neighborhoods = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "s3", cfg.Store.Kind)
	assert.Equal(t, "graphs", cfg.Store.Bucket)
	assert.Equal(t, "web/", cfg.Store.Prefix)
	assert.Equal(t, int64(1048576), cfg.Store.PrefetchThreshold)
	assert.Equal(t, 5, cfg.Store.PrefetchConcurrency)
	assert.Equal(t, edgestream.SelfLoopFail, cfg.SelfLoopPolicy())
	assert.Equal(t, binary.ByteOrder(binary.BigEndian), cfg.ByteOrder())
	assert.Equal(t, 4, cfg.Read.Shards)
	assert.False(t, cfg.Read.Decompress)
	assert.Equal(t, "dynamodb", cfg.Catalog.Kind)
	assert.Equal(t, "go-json", cfg.Output.Codec)
	assert.True(t, cfg.Output.Neighborhoods)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[store]
root = "/data"

[read]
shards = 2
`)
	t.Setenv("EDGESTREAM_ROOT", "/srv/graphs")
	t.Setenv("EDGESTREAM_SHARDS", "8")
	t.Setenv("EDGESTREAM_IO_LIMIT", "1000000")
	t.Setenv("EDGESTREAM_DECOMPRESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/graphs", cfg.Store.Root)
	assert.Equal(t, 8, cfg.Read.Shards)
	assert.Equal(t, int64(1000000), cfg.Read.IOLimit)
	assert.False(t, cfg.Read.Decompress)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load("/nonexistent/edgestream.toml")
		require.Error(t, err)
	})

	t.Run("InvalidTOML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "not valid toml {{{"))
		require.Error(t, err)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[read]\nshard = 2\n"))
		require.ErrorContains(t, err, "unknown keys")
	})

	t.Run("InvalidEnvInt", func(t *testing.T) {
		t.Setenv("EDGESTREAM_SHARDS", "many")
		_, err := Load("")
		require.ErrorContains(t, err, "EDGESTREAM_SHARDS")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"StoreKind", func(c *Config) { c.Store.Kind = "ftp" }, "unknown store kind"},
		{"S3Bucket", func(c *Config) { c.Store.Kind = "s3" }, "requires a bucket"},
		{"MinioEndpoint", func(c *Config) {
			c.Store.Kind = "minio"
			c.Store.Bucket = "b"
		}, "requires an endpoint"},
		{"Format", func(c *Config) { c.Read.Format = "csv" }, "unknown format"},
		{"SelfLoops", func(c *Config) { c.Read.SelfLoops = "drop" }, "self-loop policy"},
		{"ByteOrder", func(c *Config) { c.Read.ByteOrder = "middle" }, "byte order"},
		{"Shards", func(c *Config) { c.Read.Shards = 0 }, "shards"},
		{"Negative", func(c *Config) { c.Read.IOLimit = -1 }, "must not be negative"},
		{"CatalogKind", func(c *Config) { c.Catalog.Kind = "etcd" }, "unknown catalog kind"},
		{"StaticManifest", func(c *Config) { c.Catalog.Kind = "static" }, "requires a manifest"},
		{"DynamoTable", func(c *Config) { c.Catalog.Kind = "dynamodb" }, "requires a table"},
		{"LogLevel", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"LogFormat", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"Codec", func(c *Config) { c.Output.Codec = "msgpack" }, "unknown codec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Kind = "minio"
		cfg.Store.Bucket = "graphs"
		cfg.Store.Endpoint = "localhost:9000"
		require.NoError(t, cfg.Validate())
	})
}
