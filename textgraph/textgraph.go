// Package textgraph loads graphs stored as whitespace-delimited edge lists,
// the human-readable counterpart of the binary stream format:
//
//	# optional header lines, skipped by count
//	0 1
//	0 2
//	2 0
//
// Every pair of unsigned integers is one directed edge. Line breaks carry no
// meaning beyond separating tokens.
package textgraph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/edgestream"
	"github.com/hupe1980/edgestream/blobstore"
)

const ctxCheckInterval = 1 << 16

// SyntaxError reports a token that is not a valid node id, or a dangling
// source id at the end of the input.
type SyntaxError struct {
	Edge  int // index of the edge being parsed
	Token string
	cause error
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("textgraph: edge %d: missing target id", e.Edge)
	}
	return fmt.Sprintf("textgraph: edge %d: invalid node id %q: %v", e.Edge, e.Token, e.cause)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

// Read parses an edge list from r after discarding skipLines lines. On error
// the returned Result holds the edges parsed so far and has Partial set.
func Read(ctx context.Context, r io.Reader, skipLines int) (*edgestream.Result, error) {
	res := &edgestream.Result{}

	br := bufio.NewReader(r)
	for i := 0; i < skipLines; i++ {
		if _, err := br.ReadSlice('\n'); err != nil {
			if err == io.EOF {
				return res, nil
			}
			if err != bufio.ErrBufferFull {
				res.Partial = true
				return res, err
			}
			// Long line: keep discarding until its end.
			i--
		}
	}

	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)

	next := func() (uint32, bool, error) {
		if !sc.Scan() {
			return 0, false, sc.Err()
		}
		tok := sc.Text()
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return 0, true, &SyntaxError{Edge: len(res.Edges), Token: tok, cause: err}
		}
		return uint32(v), true, nil
	}

	for {
		if len(res.Edges)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Partial = true
				return res, err
			}
		}

		u, ok, err := next()
		if err != nil {
			res.Partial = true
			return res, err
		}
		if !ok {
			return res, nil
		}

		v, ok, err := next()
		if err != nil {
			res.Partial = true
			return res, err
		}
		if !ok {
			res.Partial = true
			return res, &SyntaxError{Edge: len(res.Edges)}
		}

		if u == v {
			res.SelfLoops++
		}
		res.MaxNodeID = max(res.MaxNodeID, u, v)
		res.Edges = append(res.Edges, edgestream.Edge{Source: u, Target: v})
	}
}

// Load reads the edge list stored under locator in store.
func Load(ctx context.Context, store blobstore.BlobStore, locator string, skipLines int) (*edgestream.Result, error) {
	rc, err := blobstore.NewReader(ctx, store, locator)
	if err != nil {
		return &edgestream.Result{Partial: true}, &edgestream.OpenError{Locator: locator, Err: err}
	}
	defer rc.Close()

	res, err := Read(ctx, rc, skipLines)
	if err == nil {
		res.Sources = 1
	}
	return res, err
}
