package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingOpener struct {
	data   map[string][]byte
	opened []string
	closed []string
	live   int
	peak   int
}

func newTrackingOpener(data map[string][]byte) *trackingOpener {
	return &trackingOpener{data: data}
}

func (o *trackingOpener) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	b, ok := o.data[locator]
	if !ok {
		return nil, errors.New("missing " + locator)
	}
	o.opened = append(o.opened, locator)
	o.live++
	o.peak = max(o.peak, o.live)
	return &trackedReader{Reader: bytes.NewReader(b), onClose: func() {
		o.live--
		o.closed = append(o.closed, locator)
	}}, nil
}

type trackedReader struct {
	*bytes.Reader
	onClose func()
}

func (r *trackedReader) Close() error {
	r.onClose()
	return nil
}

func TestCursor_Empty(t *testing.T) {
	c := NewCursor(nil, nil, 0)
	assert.Equal(t, Exhausted, c.State())
	require.NoError(t, c.Advance(context.Background()))
	assert.Equal(t, Exhausted, c.State())
	assert.Nil(t, c.Current())
}

func TestCursor_Transitions(t *testing.T) {
	ctx := context.Background()
	o := newTrackingOpener(map[string][]byte{"a": {1}, "b": {}, "c": {3}})
	c := NewCursor([]string{"a", "b", "c"}, o.Open, 16)

	assert.Equal(t, NoSourceOpen, c.State())
	assert.Equal(t, 0, c.Index())

	for i, loc := range []string{"a", "b", "c"} {
		require.NoError(t, c.Advance(ctx))
		assert.Equal(t, SourceOpen, c.State())
		assert.Equal(t, i, c.Index())
		assert.Equal(t, loc, c.Locator())
		require.NotNil(t, c.Current())
	}

	require.NoError(t, c.Advance(ctx))
	assert.Equal(t, Exhausted, c.State())
	assert.Equal(t, 3, c.Index())
	assert.Equal(t, "", c.Locator())

	assert.Equal(t, []string{"a", "b", "c"}, o.opened)
	assert.Equal(t, []string{"a", "b", "c"}, o.closed)
	assert.Equal(t, 1, o.peak, "at most one stream may be open")
}

func TestCursor_OpenFailure(t *testing.T) {
	ctx := context.Background()
	o := newTrackingOpener(map[string][]byte{"a": {1}})
	c := NewCursor([]string{"a", "missing"}, o.Open, 0)

	require.NoError(t, c.Advance(ctx))
	err := c.Advance(ctx)
	require.Error(t, err)

	assert.Equal(t, NoSourceOpen, c.State())
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, "missing", c.Locator())
	assert.Equal(t, []string{"a"}, o.closed)
	assert.Equal(t, 0, o.live)
}

func TestCursor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTrackingOpener(map[string][]byte{"a": {1}})
	c := NewCursor([]string{"a"}, o.Open, 0)

	err := c.Advance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, o.opened)
}

func TestCursor_Close(t *testing.T) {
	o := newTrackingOpener(map[string][]byte{"a": {1}})
	c := NewCursor([]string{"a"}, o.Open, 0)

	require.NoError(t, c.Advance(context.Background()))
	require.NoError(t, c.Close())
	assert.Equal(t, NoSourceOpen, c.State())
	assert.Equal(t, 0, o.live)

	// Idempotent.
	require.NoError(t, c.Close())
}

func TestByteSource(t *testing.T) {
	src := NewByteSource(io.NopCloser(bytes.NewReader([]byte{1, 2, 3, 4, 5})), 16)

	end, err := src.AtEnd()
	require.NoError(t, err)
	assert.False(t, end)

	b, err := src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)

	buf := make([]byte, 3)
	n, err := src.ReadFull(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{2, 3, 4}, buf)

	n, err = src.ReadFull(buf)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, n)

	end, err = src.AtEnd()
	require.NoError(t, err)
	assert.True(t, end)
}

func TestByteSource_AtEndReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	src := NewByteSource(io.NopCloser(&errReader{err: boom}), 0)

	end, err := src.AtEnd()
	assert.False(t, end)
	assert.ErrorIs(t, err, boom)
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }
