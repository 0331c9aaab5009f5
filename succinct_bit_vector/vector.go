// Package succinct_bit_vector provides an immutable bit vector with constant
// time rank and select.
//
// The layout is flat: the raw 64-bit words plus one cumulative uint32 count
// per 512-bit block. Select uses sampled hints (one per 512 ones or zeros)
// that are derived from the rank table and never persisted.
package succinct_bit_vector

import (
	"errors"
	"fmt"
	math_bits "math/bits"
	"strings"
	"unsafe"

	"github.com/ozzymcduff/marisa-trie/bits"
	"github.com/ozzymcduff/marisa-trie/errutil"
)

const (
	WordsPerBlock = 8
	BlockBits     = WordsPerBlock * 64
	SelectSample  = 512
)

var (
	ErrRankTable  = errors.New("succinct_bit_vector: rank table does not match bits")
	ErrShortWords = errors.New("succinct_bit_vector: word count does not match bit length")
	ErrTooLarge   = errors.New("succinct_bit_vector: more than 2^32-1 bits")
)

type Vector struct {
	words   []uint64
	numBits uint64
	numOnes uint64
	ranks   []uint32 // ranks[b] = ones before block b; len = blocks+1

	select1 []uint32 // block holding the (i*SelectSample)-th one
	select0 []uint32 // block holding the (i*SelectSample)-th zero
}

// New builds a Vector over the first numBits bits of words.
// Bits past numBits in the last word are cleared.
func New(words []uint64, numBits uint64) (*Vector, error) {
	if numBits > (1<<32)-1 {
		return nil, ErrTooLarge
	}
	if uint64(len(words)) != wordsFor(numBits) {
		return nil, ErrShortWords
	}
	if rem := numBits % 64; rem != 0 {
		words[len(words)-1] &= (uint64(1) << rem) - 1
	}
	v := &Vector{words: words, numBits: numBits}
	v.ranks = computeRanks(words, numBits)
	v.numOnes = uint64(v.ranks[len(v.ranks)-1])
	v.buildSelectHints()
	return v, nil
}

// FromParts restores a Vector from persisted words and rank table. The rank
// table is checked against the words so a corrupted image is rejected here
// rather than producing wrong answers later.
func FromParts(words []uint64, numBits uint64, ranks []uint32) (*Vector, error) {
	if numBits > (1<<32)-1 {
		return nil, ErrTooLarge
	}
	if uint64(len(words)) != wordsFor(numBits) {
		return nil, ErrShortWords
	}
	if rem := numBits % 64; rem != 0 && words[len(words)-1]>>rem != 0 {
		return nil, fmt.Errorf("%w: bits set past the end", ErrRankTable)
	}
	expected := computeRanks(words, numBits)
	if len(expected) != len(ranks) {
		return nil, fmt.Errorf("%w: %d blocks, want %d", ErrRankTable, len(ranks), len(expected))
	}
	for i := range expected {
		if expected[i] != ranks[i] {
			return nil, fmt.Errorf("%w: block %d", ErrRankTable, i)
		}
	}
	v := &Vector{words: words, numBits: numBits, ranks: ranks}
	v.numOnes = uint64(ranks[len(ranks)-1])
	v.buildSelectHints()
	return v, nil
}

func wordsFor(numBits uint64) uint64 {
	return (numBits + 63) / 64
}

func computeRanks(words []uint64, numBits uint64) []uint32 {
	blocks := (numBits + BlockBits - 1) / BlockBits
	ranks := make([]uint32, blocks+1)
	var acc uint32
	for b := uint64(0); b < blocks; b++ {
		ranks[b] = acc
		end := min((b+1)*WordsPerBlock, uint64(len(words)))
		for w := b * WordsPerBlock; w < end; w++ {
			acc += uint32(math_bits.OnesCount64(words[w]))
		}
	}
	ranks[blocks] = acc
	return ranks
}

func (v *Vector) buildSelectHints() {
	blocks := len(v.ranks) - 1
	v.select1 = v.select1[:0]
	v.select0 = v.select0[:0]
	var next1, next0 uint64
	for b := 0; b < blocks; b++ {
		ones := uint64(v.ranks[b+1])
		zeros := min(uint64(b+1)*BlockBits, v.numBits) - ones
		for next1 < ones {
			v.select1 = append(v.select1, uint32(b))
			next1 += SelectSample
		}
		for next0 < zeros {
			v.select0 = append(v.select0, uint32(b))
			next0 += SelectSample
		}
	}
	v.select1 = append(v.select1, uint32(blocks))
	v.select0 = append(v.select0, uint32(blocks))
}

func (v *Vector) Len() uint64 { return v.numBits }
func (v *Vector) NumOnes() uint64 { return v.numOnes }
func (v *Vector) NumZeros() uint64 { return v.numBits - v.numOnes }

// Words exposes the raw storage; it must not be modified.
func (v *Vector) Words() []uint64 { return v.words }

// RankTable exposes the per-block cumulative counts; it must not be modified.
func (v *Vector) RankTable() []uint32 { return v.ranks }

// Get returns the bit at index i.
func (v *Vector) Get(i uint64) bool {
	errutil.BugOn(i >= v.numBits, "index %d out of range [0, %d)", i, v.numBits)
	return v.words[i/64]&(uint64(1)<<(i%64)) != 0
}

// Rank1 returns the number of ones in [0, i).
func (v *Vector) Rank1(i uint64) uint64 {
	errutil.BugOn(i > v.numBits, "rank position %d out of range [0, %d]", i, v.numBits)
	block := i / BlockBits
	r := uint64(v.ranks[block])
	w := block * WordsPerBlock
	last := i / 64
	for ; w < last; w++ {
		r += uint64(math_bits.OnesCount64(v.words[w]))
	}
	if rem := i % 64; rem != 0 {
		r += uint64(math_bits.OnesCount64(v.words[last] & ((uint64(1) << rem) - 1)))
	}
	return r
}

// Rank0 returns the number of zeros in [0, i).
func (v *Vector) Rank0(i uint64) uint64 {
	return i - v.Rank1(i)
}

// Select1 returns the position of the k-th one (0-based).
func (v *Vector) Select1(k uint64) uint64 {
	errutil.BugOn(k >= v.numOnes, "select1(%d) with %d ones", k, v.numOnes)

	sample := k / SelectSample
	lo, hi := uint64(v.select1[sample]), uint64(v.select1[sample+1])+1
	hi = min(hi, uint64(len(v.ranks)-1))
	// last block b in [lo, hi) with ranks[b] <= k
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if uint64(v.ranks[mid]) <= k {
			lo = mid
		} else {
			hi = mid
		}
	}

	k -= uint64(v.ranks[lo])
	for w := lo * WordsPerBlock; ; w++ {
		c := uint64(math_bits.OnesCount64(v.words[w]))
		if k < c {
			return w*64 + uint64(bits.SelectInWord(v.words[w], int(k)))
		}
		k -= c
	}
}

// Select0 returns the position of the k-th zero (0-based).
func (v *Vector) Select0(k uint64) uint64 {
	errutil.BugOn(k >= v.NumZeros(), "select0(%d) with %d zeros", k, v.NumZeros())

	zerosBefore := func(b uint64) uint64 {
		return b*BlockBits - uint64(v.ranks[b])
	}

	sample := k / SelectSample
	lo, hi := uint64(v.select0[sample]), uint64(v.select0[sample+1])+1
	hi = min(hi, uint64(len(v.ranks)-1))
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if zerosBefore(mid) <= k {
			lo = mid
		} else {
			hi = mid
		}
	}

	k -= zerosBefore(lo)
	for w := lo * WordsPerBlock; ; w++ {
		inverted := ^v.words[w]
		c := uint64(math_bits.OnesCount64(inverted))
		if k < c {
			return w*64 + uint64(bits.SelectInWord(inverted, int(k)))
		}
		k -= c
	}
}

// ByteSize returns the resident size estimate in bytes.
func (v *Vector) ByteSize() int {
	if v == nil {
		return 0
	}
	return len(v.words)*8 + (len(v.ranks)+len(v.select1)+len(v.select0))*4 + int(unsafe.Sizeof(*v))
}

func (v *Vector) String() string {
	var sb strings.Builder
	for i := uint64(0); i < v.numBits; i++ {
		if v.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
