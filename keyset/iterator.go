package keyset

import (
	"bytes"

	"github.com/ozzymcduff/marisa-trie/errutil"
)

// Iterator iterates over a sequence of keys.
type Iterator interface {
	// Next advances the iterator to the next element.
	// Returns true if an element is available, false if the sequence is exhausted or an error occurred.
	Next() bool

	// Value returns the current key.
	// Should only be called after Next() returns true.
	Value() []byte

	// Error returns the first error encountered during iteration, if any.
	Error() error
}

// SliceIterator adapts a slice of keys to the Iterator interface.
type SliceIterator struct {
	keys [][]byte
	idx  int
}

func NewSliceIterator(keys [][]byte) *SliceIterator {
	return &SliceIterator{keys: keys, idx: -1}
}

func (it *SliceIterator) Next() bool {
	it.idx++
	return it.idx < len(it.keys)
}

func (it *SliceIterator) Value() []byte {
	return it.keys[it.idx]
}

func (it *SliceIterator) Error() error {
	return nil
}

// CheckedSortedIterator wraps an Iterator and verifies that the yielded keys
// are strictly increasing. It panics via errutil.BugOn on an out-of-order or
// repeated key.
type CheckedSortedIterator struct {
	iter    Iterator
	prev    []byte
	started bool
}

func NewCheckedSortedIterator(iter Iterator) *CheckedSortedIterator {
	return &CheckedSortedIterator{iter: iter}
}

func (it *CheckedSortedIterator) Next() bool {
	if !it.iter.Next() {
		return false
	}
	val := it.iter.Value()
	if it.started {
		errutil.BugOn(bytes.Compare(it.prev, val) >= 0, "Keys should be sorted and unique: %q then %q", it.prev, val)
	}
	it.prev = val
	it.started = true
	return true
}

func (it *CheckedSortedIterator) Value() []byte {
	return it.iter.Value()
}

func (it *CheckedSortedIterator) Error() error {
	return it.iter.Error()
}
