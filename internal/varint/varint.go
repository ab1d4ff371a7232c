package varint

import (
	"errors"
	"io"
)

// MaxLen64 is the maximum encoded length of a uint64.
const MaxLen64 = 10

const (
	payloadMask  = 0x7F
	continueBit  = 0x80
	lastByteMask = 0xFE
)

// ErrOverflow is returned when the final byte of a 10-byte sequence carries bits
// beyond the 64-bit range.
var ErrOverflow = errors.New("varint: overflow during uint64 decoding")

// Decode reads a single varint from r.
//
// If r fails before the first byte the error is returned unchanged (io.EOF at
// a clean end of stream). A failure after at least one byte turns io.EOF into
// io.ErrUnexpectedEOF.
func Decode(r io.ByteReader) (uint64, error) {
	var v uint64
	for i := 0; i < MaxLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}

		if i == MaxLen64-1 {
			if b&lastByteMask != 0 {
				return 0, ErrOverflow
			}
			return v | uint64(b)<<63, nil
		}

		v |= uint64(b&payloadMask) << (7 * i)
		if b&continueBit == 0 {
			return v, nil
		}
	}

	// unreachable: the 10th byte always returns
	return 0, ErrOverflow
}

// Len returns the number of bytes needed to encode v.
func Len(v uint64) int {
	n := 1
	for v >= continueBit {
		v >>= 7
		n++
	}
	return n
}

// Append appends the encoding of v to dst.
func Append(dst []byte, v uint64) []byte {
	for v >= continueBit {
		dst = append(dst, byte(v)|continueBit)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Write encodes v to w.
func Write(w io.Writer, v uint64) (int, error) {
	var buf [MaxLen64]byte
	return w.Write(Append(buf[:0], v))
}
