package stream

import (
	"bufio"
	"errors"
	"io"
)

// DefaultBufferSize is the read buffer used when none is configured.
const DefaultBufferSize = 64 * 1024

// ByteSource is a forward-only byte stream.
type ByteSource interface {
	io.ByteReader
	io.Closer

	// ReadFull reads exactly len(p) bytes. It returns io.EOF if nothing was
	// read and io.ErrUnexpectedEOF if the stream ended part way.
	ReadFull(p []byte) (int, error)

	// AtEnd reports whether the stream has no more data. A non-EOF read
	// failure is returned as the error.
	AtEnd() (bool, error)
}

type bufferedSource struct {
	r  *bufio.Reader
	rc io.ReadCloser
}

// NewByteSource returns a buffered ByteSource reading from rc. Closing the
// source closes rc.
func NewByteSource(rc io.ReadCloser, bufSize int) ByteSource {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &bufferedSource{
		r:  bufio.NewReaderSize(rc, bufSize),
		rc: rc,
	}
}

func (s *bufferedSource) ReadByte() (byte, error) {
	return s.r.ReadByte()
}

func (s *bufferedSource) ReadFull(p []byte) (int, error) {
	return io.ReadFull(s.r, p)
}

func (s *bufferedSource) AtEnd() (bool, error) {
	_, err := s.r.Peek(1)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func (s *bufferedSource) Close() error {
	return s.rc.Close()
}
