package succinct_bit_vector

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/ozzymcduff/marisa-trie/errutil"
)

// Builder accumulates bits before freezing them into a Vector.
type Builder struct {
	set *bitset.BitSet
	n   uint64
}

func NewBuilder(capacityHint uint64) *Builder {
	return &Builder{set: bitset.New(uint(capacityHint))}
}

func (b *Builder) PushBack(bit bool) {
	if bit {
		b.set.Set(uint(b.n))
	}
	b.n++
}

// PushRun appends count copies of bit.
func (b *Builder) PushRun(bit bool, count uint64) {
	if bit {
		for i := uint64(0); i < count; i++ {
			b.set.Set(uint(b.n + i))
		}
	}
	b.n += count
}

// Set turns on a bit that was already pushed.
func (b *Builder) Set(i uint64) {
	errutil.BugOn(i >= b.n, "set(%d) past length %d", i, b.n)
	b.set.Set(uint(i))
}

func (b *Builder) Get(i uint64) bool {
	return i < b.n && b.set.Test(uint(i))
}

func (b *Builder) Len() uint64 {
	return b.n
}

// Build freezes the accumulated bits. The builder must not be used afterwards.
func (b *Builder) Build() *Vector {
	words := make([]uint64, wordsFor(b.n))
	copy(words, b.set.Words())
	v, err := New(words, b.n)
	errutil.BugOn(err != nil, "freezing %d bits: %v", b.n, err)
	b.set = nil
	return v
}
