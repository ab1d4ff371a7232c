package stream

import (
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container format of a stream.
type Compression uint8

const (
	// CompressionNone is a raw stream.
	CompressionNone Compression = iota
	// CompressionZSTD is a zstd frame stream (.zst).
	CompressionZSTD
	// CompressionGzip is a gzip stream (.gz).
	CompressionGzip
	// CompressionS2 is an s2/snappy framed stream (.s2, .sz).
	CompressionS2
	// CompressionLZ4 is an lz4 frame stream (.lz4).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionZSTD:
		return "zstd"
	case CompressionGzip:
		return "gzip"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// DetectCompression picks the format from the locator's extension.
func DetectCompression(locator string) Compression {
	switch strings.ToLower(path.Ext(locator)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".gz", ".gzip":
		return CompressionGzip
	case ".s2", ".sz":
		return CompressionS2
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Decompress wraps rc with a decoder for c. Closing the result closes rc.
func Decompress(rc io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionZSTD:
		dec, err := zstd.NewReader(rc, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return &decoderCloser{Reader: dec, inner: rc, release: dec.Close}, nil
	case CompressionGzip:
		dec, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decoderCloser{Reader: dec, inner: rc, release: func() { _ = dec.Close() }}, nil
	case CompressionS2:
		return &decoderCloser{Reader: s2.NewReader(rc), inner: rc}, nil
	case CompressionLZ4:
		return &decoderCloser{Reader: lz4.NewReader(rc), inner: rc}, nil
	default:
		return rc, nil
	}
}

type decoderCloser struct {
	io.Reader
	inner   io.Closer
	release func()
}

func (d *decoderCloser) Close() error {
	if d.release != nil {
		d.release()
	}
	return d.inner.Close()
}
