package mmap

import "errors"

// AccessPattern is the madvise hint applied to a Mapping. Graph sources are
// drained front to back, so LocalStore uses AccessSequential.
type AccessPattern int

const (
	// AccessNormal clears any earlier hint.
	AccessNormal AccessPattern = iota
	// AccessSequential enables aggressive read-ahead and early page reclaim.
	AccessSequential
	// AccessRandom disables read-ahead, for blobs read with scattered ReadAt calls.
	AccessRandom
)

var (
	// ErrClosed is returned by reads and hints on an unmapped file.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files larger than the address space.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned by ReadAt for a negative offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
