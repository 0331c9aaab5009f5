package louds

import (
	"bytes"

	"golang.org/x/exp/slices"

	"github.com/ozzymcduff/marisa-trie/bits"
	"github.com/ozzymcduff/marisa-trie/errutil"
	sbv "github.com/ozzymcduff/marisa-trie/succinct_bit_vector"
)

// tail stores the suffixes of the last cascade level. ends has a one at the
// last byte of every stored entry, so entries may contain any byte.
type tail struct {
	buf  []byte
	ends *sbv.Vector
}

// buildTail stores entries and returns the offset of each one.
func buildTail(entries [][]byte, mode TailMode) (tail, []uint64) {
	offsets := make([]uint64, len(entries))
	ends := sbv.NewBuilder(0)
	var buf []byte

	appendEntry := func(e []byte) uint64 {
		off := uint64(len(buf))
		buf = append(buf, e...)
		ends.PushRun(false, uint64(len(e)-1))
		ends.PushBack(true)
		return off
	}

	switch mode {
	case TailWholeSuffix:
		for i, e := range entries {
			offsets[i] = appendEntry(e)
		}
	case TailLongestCommonSuffix:
		// Descending order of the reversed strings puts every entry right
		// after the longest entry that ends with it.
		order := make([]int, len(entries))
		reversed := make([][]byte, len(entries))
		for i, e := range entries {
			order[i] = i
			reversed[i] = bits.Reverse(e)
		}
		slices.SortStableFunc(order, func(a, b int) bool {
			return bytes.Compare(reversed[a], reversed[b]) > 0
		})
		for j, idx := range order {
			cur := entries[idx]
			if j > 0 {
				prevIdx := order[j-1]
				prev := entries[prevIdx]
				if bits.HasSuffix(prev, cur) {
					offsets[idx] = offsets[prevIdx] + uint64(len(prev)-len(cur))
					continue
				}
			}
			offsets[idx] = appendEntry(cur)
		}
	default:
		errutil.Bug("tail built with mode %v", mode)
	}

	return tail{buf: buf, ends: ends.Build()}, offsets
}

// restore appends the entry at off.
func (t *tail) restore(dst []byte, off uint64) []byte {
	for i := off; ; i++ {
		dst = append(dst, t.buf[i])
		if t.ends.Get(i) {
			return dst
		}
	}
}

// match consumes the entry at off from q[*pos:]. It fails if q disagrees
// with the entry or ends before it does.
func (t *tail) match(q []byte, pos *int, off uint64) bool {
	for i := off; ; i++ {
		if *pos >= len(q) || q[*pos] != t.buf[i] {
			return false
		}
		*pos++
		if t.ends.Get(i) {
			return true
		}
	}
}

func (t *tail) byteSize() int {
	return len(t.buf) + t.ends.ByteSize()
}
