package edgestream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hupe1980/edgestream/blobstore"
	"github.com/hupe1980/edgestream/internal/stream"
	"github.com/hupe1980/edgestream/internal/varint"
)

// Reader decodes binary graph streams.
//
// The format is a sequence of records, one per node in implicit id order:
//
//	varint(degree) || degree × uint32(neighbor)
//
// A Reader holds only configuration; each Read call owns its own state, so a
// Reader may be used by several goroutines.
type Reader struct {
	opts options
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	return &Reader{opts: applyOptions(opts)}
}

// Read decodes sources in order. Node numbering continues across source
// boundaries and empty sources contribute no node. Every failure aborts the
// read; the returned Result then has Partial set.
func (r *Reader) Read(ctx context.Context, sources []string) (*Result, error) {
	res, _, err := r.read(ctx, sources, r.opts.logger, true)
	return res, err
}

// sourceSpan records that the records from start onwards, up to the next
// span, were decoded from locator.
type sourceSpan struct {
	locator string
	start   uint64
}

// read decodes sources. With checkLoops unset, self-loops are neither counted
// nor subjected to the policy; ReadShards applies it after renumbering.
func (r *Reader) read(ctx context.Context, sources []string, logger *Logger, checkLoops bool) (res *Result, spans []sourceSpan, err error) {
	start := time.Now()

	d := &decoder{
		opts:       &r.opts,
		logger:     logger,
		checkLoops: checkLoops,
		res:        &Result{},
	}
	d.cursor = stream.NewCursor(sources, d.open, r.opts.bufferSize)

	defer func() {
		if err != nil {
			d.finishSource(ctx, err)
		}
		locator := d.cursor.Locator()
		if cerr := d.cursor.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", locator, cerr)
		}
		if err != nil {
			res.Partial = true
		}
		r.opts.metricsCollector.RecordRead(res.Nodes, len(res.Edges), time.Since(start), err)
		logger.LogRead(ctx, res.Sources, res.Nodes, len(res.Edges), res.MaxNodeID, time.Since(start), err)
	}()

	err = d.run(ctx)
	return d.res, d.spans, err
}

// decoder is the per-call state of a Read.
type decoder struct {
	opts       *options
	logger     *Logger
	checkLoops bool
	cursor     *stream.Cursor
	res        *Result
	spans      []sourceSpan

	// current source accounting
	counter     *stream.Counter
	sourceStart time.Time
	sourceNodes uint64

	buf [4]byte
}

func (d *decoder) open(ctx context.Context, locator string) (io.ReadCloser, error) {
	rc, err := blobstore.NewReader(ctx, d.opts.store, locator)
	if err != nil {
		return nil, err
	}

	d.counter = stream.NewCounter(rc)
	rc = stream.Throttle(ctx, d.counter, d.opts.limiter)

	if d.opts.decompress {
		if c := stream.DetectCompression(locator); c != stream.CompressionNone {
			drc, err := stream.Decompress(rc, c)
			if err != nil {
				_ = rc.Close()
				return nil, fmt.Errorf("%s decoder: %w", c, err)
			}
			rc = drc
		}
	}

	d.sourceStart = time.Now()
	d.sourceNodes = 0
	return rc, nil
}

func (d *decoder) run(ctx context.Context) error {
	var u uint64 // implicit id of the next record

	for {
		switch d.cursor.State() {
		case stream.Exhausted:
			return nil
		case stream.NoSourceOpen:
			if err := d.advance(ctx); err != nil {
				return err
			}
			continue
		}

		src := d.cursor.Current()
		end, err := src.AtEnd()
		if err != nil {
			return fmt.Errorf("read %s: %w", d.cursor.Locator(), err)
		}
		if end {
			if err := d.closeSource(ctx); err != nil {
				return err
			}
			continue
		}

		if u > math.MaxUint32 {
			return ErrNodeIDOverflow
		}
		if err := d.readRecord(ctx, src, uint32(u)); err != nil {
			return err
		}
		u++
		d.res.Nodes = u
		d.sourceNodes++
	}
}

func (d *decoder) advance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.cursor.Advance(ctx)
	if d.cursor.State() == stream.Exhausted {
		return err
	}
	d.logger.LogSourceOpen(ctx, d.cursor.Index(), d.cursor.Locator(), err)
	if err != nil {
		return &OpenError{Index: d.cursor.Index(), Locator: d.cursor.Locator(), Err: err}
	}
	d.spans = append(d.spans, sourceSpan{locator: d.cursor.Locator(), start: d.res.Nodes})
	return nil
}

// closeSource closes a drained source. The cursor moves to NoSourceOpen and
// the next iteration opens the following locator.
func (d *decoder) closeSource(ctx context.Context) error {
	locator := d.cursor.Locator()
	if err := d.cursor.Close(); err != nil {
		return fmt.Errorf("close %s: %w", locator, err)
	}
	d.res.Sources++
	d.finishSourceAs(ctx, locator, nil)
	return nil
}

// finishSource reports the source that was open when the read failed.
func (d *decoder) finishSource(ctx context.Context, err error) {
	d.finishSourceAs(ctx, d.cursor.Locator(), err)
}

func (d *decoder) finishSourceAs(ctx context.Context, locator string, err error) {
	if d.counter == nil {
		return
	}
	n := d.counter.Count()
	d.opts.metricsCollector.RecordSource(locator, n, time.Since(d.sourceStart), err)
	d.logger.LogSourceDone(ctx, locator, d.sourceNodes, n, err)
	d.counter = nil
}

func (d *decoder) readRecord(ctx context.Context, src stream.ByteSource, u uint32) error {
	res := d.res
	res.MaxNodeID = max(res.MaxNodeID, u)

	deg, err := varint.Decode(src)
	if err != nil {
		switch {
		case errors.Is(err, varint.ErrOverflow):
			return fmt.Errorf("degree of node %d in %s: %w", u, d.cursor.Locator(), err)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return &TruncatedReadError{Locator: d.cursor.Locator(), Node: u, Field: "degree"}
		default:
			return fmt.Errorf("read %s: %w", d.cursor.Locator(), err)
		}
	}

	for i := uint64(0); i < deg; i++ {
		n, err := src.ReadFull(d.buf[:])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return &TruncatedReadError{
					Locator:  d.cursor.Locator(),
					Node:     u,
					Field:    "neighbor",
					Degree:   deg,
					Neighbor: i,
					Got:      n,
				}
			}
			return fmt.Errorf("read %s: %w", d.cursor.Locator(), err)
		}

		v := d.opts.byteOrder.Uint32(d.buf[:])
		if v == u && d.checkLoops {
			if err := d.selfLoop(ctx, u); err != nil {
				return err
			}
		}

		res.MaxNodeID = max(res.MaxNodeID, v)
		res.Edges = append(res.Edges, Edge{Source: u, Target: v})
	}

	return nil
}

func (d *decoder) selfLoop(ctx context.Context, u uint32) error {
	d.opts.metricsCollector.RecordSelfLoop()

	switch d.opts.selfLoopPolicy {
	case SelfLoopFail:
		return &SelfLoopError{Locator: d.cursor.Locator(), Node: u}
	case SelfLoopWarn:
		d.logger.LogSelfLoop(ctx, d.cursor.Locator(), u)
	}
	d.res.SelfLoops++
	return nil
}
