package stream

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// NewLimiter returns a limiter for bytesPerSec, or nil when bytesPerSec <= 0.
// A single limiter may be shared by several streams to cap their total rate.
func NewLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
}

// Throttle limits reads from rc to the rate of l. A nil limiter returns rc.
func Throttle(ctx context.Context, rc io.ReadCloser, l *rate.Limiter) io.ReadCloser {
	if l == nil {
		return rc
	}
	return &throttledReader{ctx: ctx, rc: rc, l: l}
}

type throttledReader struct {
	ctx context.Context
	rc  io.ReadCloser
	l   *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if burst := t.l.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := t.rc.Read(p)
	if n > 0 {
		if werr := t.l.WaitN(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (t *throttledReader) Close() error { return t.rc.Close() }

// Counter wraps rc and counts the bytes read through it.
type Counter struct {
	rc io.ReadCloser
	n  atomic.Int64
}

// NewCounter wraps rc.
func NewCounter(rc io.ReadCloser) *Counter {
	return &Counter{rc: rc}
}

func (c *Counter) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Close closes the wrapped reader.
func (c *Counter) Close() error { return c.rc.Close() }

// Count returns the number of bytes read so far.
func (c *Counter) Count() int64 { return c.n.Load() }
