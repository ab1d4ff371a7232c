// Package partition writes community assignments computed over a decoded graph.
//
// An assignment is a slice indexed by node id holding each node's community.
// Community 0 means the node is unassigned.
package partition

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
)

// Communities groups node ids 0..maxNodeID by community, skipping
// unassigned nodes. Ids beyond the assignment slice are ignored.
func Communities(assignment []uint32, maxNodeID uint32) map[uint32]*roaring.Bitmap {
	communities := make(map[uint32]*roaring.Bitmap)

	n := min(uint64(maxNodeID)+1, uint64(len(assignment)))
	for u := uint64(0); u < n; u++ {
		c := assignment[u]
		if c == 0 {
			continue
		}
		members, ok := communities[c]
		if !ok {
			members = roaring.New()
			communities[c] = members
		}
		members.Add(uint32(u))
	}
	return communities
}

// WriteBinary writes one (node id, community) pair of 4-byte integers per node
// in the given byte order, for every node in the assignment.
func WriteBinary(w io.Writer, assignment []uint32, order binary.ByteOrder) error {
	if uint64(len(assignment)) > math.MaxUint32+1 {
		return ErrTooManyNodes
	}

	bw := bufio.NewWriter(w)
	var rec [8]byte
	for u, c := range assignment {
		order.PutUint32(rec[0:4], uint32(u))
		order.PutUint32(rec[4:8], c)
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBinary decodes the output of WriteBinary. Node ids are taken from the
// records, so gaps are left unassigned.
func ReadBinary(r io.Reader, order binary.ByteOrder) ([]uint32, error) {
	br := bufio.NewReader(r)

	var (
		assignment []uint32
		rec        [8]byte
	)
	for {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			if err == io.EOF {
				return assignment, nil
			}
			return assignment, err
		}
		u := order.Uint32(rec[0:4])
		if int(u) >= len(assignment) {
			assignment = slices.Grow(assignment, int(u)+1-len(assignment))[:int(u)+1]
		}
		assignment[u] = order.Uint32(rec[4:8])
	}
}

// WriteText writes one community per line, in ascending community id, as
// space-separated ascending node ids. With removeSingletons, communities of
// a single node are omitted. It returns the number of lines written.
func WriteText(w io.Writer, communities map[uint32]*roaring.Bitmap, removeSingletons bool) (int, error) {
	ids := make([]uint32, 0, len(communities))
	for c := range communities {
		ids = append(ids, c)
	}
	slices.Sort(ids)

	bw := bufio.NewWriter(w)
	var (
		written int
		buf     []byte
	)
	for _, c := range ids {
		members := communities[c]
		if members == nil || members.IsEmpty() {
			continue
		}
		if removeSingletons && members.GetCardinality() == 1 {
			continue
		}

		buf = buf[:0]
		it := members.Iterator()
		for it.HasNext() {
			if len(buf) > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendUint(buf, uint64(it.Next()), 10)
		}
		buf = append(buf, '\n')

		if _, err := bw.Write(buf); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}
