// Package keyset holds the build-time collection of keys fed to the trie
// builder. A KeySet is append-only and is not itself queryable.
package keyset

// Key is a view into a KeySet. Bytes aliases the set's arena and stays valid
// until the set is Reset.
type Key struct {
	Bytes  []byte
	Weight float64
}

type descriptor struct {
	offset int
	length int
	weight float64
}

// KeySet stores all key bytes in one arena plus a descriptor per key.
type KeySet struct {
	arena []byte
	keys  []descriptor
}

func New() *KeySet {
	return &KeySet{}
}

// Push appends a copy of key with weight 1.
func (ks *KeySet) Push(key []byte) {
	ks.PushWeighted(key, 1.0)
}

func (ks *KeySet) PushString(s string) {
	ks.pushWeighted(s, 1.0)
}

// PushWeighted appends a copy of key. Empty keys are allowed.
func (ks *KeySet) PushWeighted(key []byte, weight float64) {
	ks.keys = append(ks.keys, descriptor{offset: len(ks.arena), length: len(key), weight: weight})
	ks.arena = append(ks.arena, key...)
}

func (ks *KeySet) pushWeighted(s string, weight float64) {
	ks.keys = append(ks.keys, descriptor{offset: len(ks.arena), length: len(s), weight: weight})
	ks.arena = append(ks.arena, s...)
}

func (ks *KeySet) Len() int {
	return len(ks.keys)
}

func (ks *KeySet) At(i int) Key {
	d := ks.keys[i]
	return Key{Bytes: ks.arena[d.offset : d.offset+d.length : d.offset+d.length], Weight: d.weight}
}

// TotalLength returns the summed length of all pushed keys.
func (ks *KeySet) TotalLength() int {
	return len(ks.arena)
}

// Reset drops every key and releases the arena.
func (ks *KeySet) Reset() {
	ks.arena = nil
	ks.keys = nil
}

// WeightedIterator is an Iterator that also reports the weight of the
// current key.
type WeightedIterator interface {
	Iterator
	Weight() float64
}

// Iterator walks the keys in insertion order.
func (ks *KeySet) Iterator() WeightedIterator {
	return &setIterator{ks: ks, idx: -1}
}

type setIterator struct {
	ks  *KeySet
	idx int
}

func (it *setIterator) Next() bool {
	it.idx++
	return it.idx < it.ks.Len()
}

func (it *setIterator) Value() []byte {
	return it.ks.At(it.idx).Bytes
}

func (it *setIterator) Weight() float64 {
	return it.ks.keys[it.idx].weight
}

func (it *setIterator) Error() error {
	return nil
}
