package stream

import (
	"context"
	"fmt"
	"io"
)

// OpenFunc opens the stream behind a locator.
type OpenFunc func(ctx context.Context, locator string) (io.ReadCloser, error)

// State is the position of a Cursor in its locator list.
type State int

const (
	// NoSourceOpen means no stream is open and the next Advance opens one.
	NoSourceOpen State = iota
	// SourceOpen means the stream at Index is open.
	SourceOpen
	// Exhausted means every locator has been consumed.
	Exhausted
)

func (s State) String() string {
	switch s {
	case NoSourceOpen:
		return "NoSourceOpen"
	case SourceOpen:
		return "SourceOpen"
	case Exhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Cursor walks an ordered list of locators, opening one stream at a time.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	locators []string
	open     OpenFunc
	bufSize  int

	state   State
	next    int // index of the locator the next Advance opens
	current ByteSource
}

// NewCursor creates a cursor in the NoSourceOpen state (or Exhausted when
// locators is empty).
func NewCursor(locators []string, open OpenFunc, bufSize int) *Cursor {
	c := &Cursor{
		locators: locators,
		open:     open,
		bufSize:  bufSize,
	}
	if len(locators) == 0 {
		c.state = Exhausted
	}
	return c
}

// State returns the current state.
func (c *Cursor) State() State { return c.state }

// Index returns the index of the open locator. In NoSourceOpen it is the
// index the next Advance will open; in Exhausted it equals the list length.
func (c *Cursor) Index() int {
	if c.state == SourceOpen {
		return c.next - 1
	}
	return c.next
}

// Locator returns the locator at Index, or "" when exhausted.
func (c *Cursor) Locator() string {
	if i := c.Index(); i < len(c.locators) {
		return c.locators[i]
	}
	return ""
}

// Current returns the open source, or nil unless the state is SourceOpen.
func (c *Cursor) Current() ByteSource {
	return c.current
}

// Advance closes the open source, if any, and opens the next locator.
//
// When no locator remains the cursor becomes Exhausted. If opening fails the
// cursor stays in NoSourceOpen at the failed index and the error is returned;
// a close failure on the previous source is returned after the transition.
func (c *Cursor) Advance(ctx context.Context) error {
	if c.state == Exhausted {
		return nil
	}

	closeErr := c.closeCurrent()

	if c.next >= len(c.locators) {
		c.state = Exhausted
		return closeErr
	}

	if err := ctx.Err(); err != nil {
		c.state = NoSourceOpen
		return err
	}

	rc, err := c.open(ctx, c.locators[c.next])
	if err != nil {
		c.state = NoSourceOpen
		return err
	}

	c.current = NewByteSource(rc, c.bufSize)
	c.next++
	c.state = SourceOpen
	return closeErr
}

// Close releases the open source, if any. The cursor keeps its position.
func (c *Cursor) Close() error {
	err := c.closeCurrent()
	if c.state == SourceOpen {
		c.state = NoSourceOpen
	}
	return err
}

func (c *Cursor) closeCurrent() error {
	if c.current == nil {
		return nil
	}
	err := c.current.Close()
	c.current = nil
	return err
}
