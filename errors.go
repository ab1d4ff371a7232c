package edgestream

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/edgestream/internal/varint"
)

var (
	// ErrOverflow is returned when a degree varint does not fit in 64 bits.
	ErrOverflow = varint.ErrOverflow

	// ErrNodeIDOverflow is returned when the stream holds more degree records
	// than a uint32 node id can number.
	ErrNodeIDOverflow = errors.New("node id overflow: more than 2^32 degree records")
)

// OpenError indicates a listed source could not be opened.
//
// The original underlying error can be accessed via errors.Unwrap.
type OpenError struct {
	Index   int
	Locator string
	Err     error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open source %d (%s): %v", e.Index, e.Locator, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// TruncatedReadError indicates a source ended inside a degree record.
//
// Field is "degree" when the varint itself was cut short and "neighbor" when
// fewer than 4 bytes remained for a declared neighbor id. errors.Is reports
// io.ErrUnexpectedEOF for every TruncatedReadError.
type TruncatedReadError struct {
	Locator  string
	Node     uint32
	Field    string
	Degree   uint64 // declared degree, set for Field "neighbor"
	Neighbor uint64 // index of the neighbor being read
	Got      int    // bytes of the neighbor id that were available
}

func (e *TruncatedReadError) Error() string {
	if e.Field == "neighbor" {
		return fmt.Sprintf("truncated read in %s: node %d declares %d neighbors, stream ended at neighbor %d (%d of 4 bytes)",
			e.Locator, e.Node, e.Degree, e.Neighbor, e.Got)
	}
	return fmt.Sprintf("truncated read in %s: stream ended inside the degree of node %d", e.Locator, e.Node)
}

func (e *TruncatedReadError) Unwrap() error { return io.ErrUnexpectedEOF }

// SelfLoopError is returned under SelfLoopFail when a node lists itself as a neighbor.
type SelfLoopError struct {
	Locator string
	Node    uint32
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("self-loop on node %d in %s", e.Node, e.Locator)
}
