package louds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/zeebo/xxh3"

	"github.com/ozzymcduff/marisa-trie/bits"
	sbv "github.com/ozzymcduff/marisa-trie/succinct_bit_vector"
)

// Serialized layout, little-endian, every section padded to 8 bytes:
//
//	header    magic[8] version u32 levels u32 keys u64 tail u8 order u8 flags u8 pad[5]
//	level     numL1Nodes u64, louds vector, terminal vector, labels, link vector, targets
//	tail      bytes, ends vector
//	ids       packed array
//	weights   count u64, float64 bits (only with flagWeights)
//	checksum  xxh3-64 of everything before it
//
// vector:  numBits u64, wordBytes u64, words, blocks u64, ranks u32..., pad
// packed:  len u64, width u64, wordBytes u64, words
// bytes:   len u64, data, pad
const (
	formatMagic   = "CASCTRIE"
	formatVersion = 1
	headerSize    = 32
	checksumSize  = 8

	flagWeights = 1 << 0
)

// Serialize encodes t into a single buffer.
func (t *Trie) Serialize() ([]byte, error) {
	e := encoder{buf: make([]byte, 0, t.ByteSize()+headerSize+checksumSize)}

	e.buf = append(e.buf, formatMagic...)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, formatVersion)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(t.levels)))
	e.u64(t.numKeys)
	var flags byte
	if t.weights != nil {
		flags |= flagWeights
	}
	e.buf = append(e.buf, byte(t.tailMode), byte(t.idOrder), flags, 0, 0, 0, 0, 0)

	for i := range t.levels {
		lv := &t.levels[i]
		e.u64(lv.numL1Nodes)
		e.vector(lv.louds)
		e.vector(lv.terminal)
		e.bytes(lv.labels)
		e.vector(lv.link)
		e.packed(lv.targets)
	}
	e.bytes(t.tail.buf)
	e.vector(t.tail.ends)
	e.packed(t.ids)
	if t.weights != nil {
		e.u64(uint64(len(t.weights)))
		for _, w := range t.weights {
			e.u64(math.Float64bits(w))
		}
	}
	e.u64(xxh3.Hash(e.buf))
	return e.buf, nil
}

func (t *Trie) MarshalBinary() ([]byte, error) {
	return t.Serialize()
}

// UnmarshalBinary decodes a copy of data into t.
func (t *Trie) UnmarshalBinary(data []byte) error {
	return Deserialize(alignedCopy(data), t)
}

func (t *Trie) WriteTo(w io.Writer) (int64, error) {
	data, err := t.Serialize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes t to path.
func (t *Trie) Save(path string) error {
	data, err := t.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write trie to %q: %w", path, err)
	}
	return nil
}

// Load reads a trie saved with Save.
func Load(path string) (*Trie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trie from %q: %w", path, err)
	}
	var t Trie
	if err := Deserialize(alignedCopy(data), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Deserialize decodes data into t. The decoded trie aliases data whenever
// the host is little-endian and data is 8-byte aligned, so data must stay
// unchanged while t is in use. On error t is left untouched.
func Deserialize(data []byte, t *Trie) error {
	if len(data) < headerSize+checksumSize {
		return corrupt("%d bytes is shorter than header and checksum", len(data))
	}
	if !bytes.Equal(data[:8], []byte(formatMagic)) {
		return corrupt("bad magic %q", data[:8])
	}
	if v := binary.LittleEndian.Uint32(data[8:]); v != formatVersion {
		return corrupt("unsupported version %d", v)
	}
	body := data[:len(data)-checksumSize]
	if sum := binary.LittleEndian.Uint64(data[len(body):]); sum != xxh3.Hash(body) {
		return corrupt("checksum mismatch")
	}

	numLevels := binary.LittleEndian.Uint32(data[12:])
	numKeys := binary.LittleEndian.Uint64(data[16:])
	tailMode := TailMode(data[24])
	idOrder := IDOrder(data[25])
	flags := data[26]
	if numLevels < 1 || numLevels > MaxLevels {
		return corrupt("%d levels", numLevels)
	}
	if tailMode > TailLongestCommonSuffix || idOrder > IDOrderWeight || flags&^flagWeights != 0 {
		return corrupt("unknown mode bits %d/%d/%d", tailMode, idOrder, flags)
	}
	if numKeys > math.MaxUint32 {
		return corrupt("%d keys", numKeys)
	}

	d := decoder{data: body, off: headerSize}
	out := Trie{numKeys: numKeys, tailMode: tailMode, idOrder: idOrder}
	out.levels = make([]level, numLevels)
	for i := range out.levels {
		if err := d.level(&out.levels[i], i); err != nil {
			return err
		}
	}

	buf, err := d.bytes("tail bytes")
	if err != nil {
		return err
	}
	ends, err := d.vector("tail ends")
	if err != nil {
		return err
	}
	out.tail = tail{buf: buf, ends: ends}

	if out.ids, err = d.packed("ids"); err != nil {
		return err
	}
	if flags&flagWeights != 0 {
		n, err := d.u64("weights")
		if err != nil {
			return err
		}
		if n != numKeys {
			return corrupt("%d weights for %d keys", n, numKeys)
		}
		raw, err := d.take(n*8, "weights")
		if err != nil {
			return err
		}
		out.weights = make([]float64, n)
		for i := range out.weights {
			out.weights[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}
	if d.off != len(body) {
		return corrupt("%d trailing bytes", len(body)-d.off)
	}

	if err := out.validate(); err != nil {
		return err
	}
	*t = out
	return nil
}

// validate checks the cross-section invariants that queries rely on and
// builds the ID to rank index.
func (t *Trie) validate() error {
	last := len(t.levels) - 1
	for i := range t.levels {
		lv := &t.levels[i]
		if err := lv.validate(); err != nil {
			return corrupt("level %d: %v", i+1, err)
		}
		numLinks := uint64(lv.targets.Len())
		switch {
		case i < last:
			next := t.levels[i+1].numNodes()
			for k := 0; k < lv.targets.Len(); k++ {
				if target := lv.targets.Get(k); target == 0 || target >= next {
					return corrupt("level %d: link target %d outside [1, %d)", i+1, target, next)
				}
			}
		case numLinks > 0 && t.tailMode == TailNone:
			return corrupt("level %d: links without a tail", i+1)
		default:
			for k := 0; k < lv.targets.Len(); k++ {
				if off := lv.targets.Get(k); off >= uint64(len(t.tail.buf)) {
					return corrupt("tail offset %d outside %d bytes", off, len(t.tail.buf))
				}
			}
		}
	}

	if t.tail.ends.Len() != uint64(len(t.tail.buf)) {
		return corrupt("tail ends cover %d of %d bytes", t.tail.ends.Len(), len(t.tail.buf))
	}
	if n := len(t.tail.buf); n > 0 && !t.tail.ends.Get(uint64(n-1)) {
		return corrupt("unterminated tail")
	}

	if terminals := t.levels[0].terminal.NumOnes(); terminals != t.numKeys {
		return corrupt("%d terminals for %d keys", terminals, t.numKeys)
	}
	if uint64(t.ids.Len()) != t.numKeys {
		return corrupt("%d ids for %d keys", t.ids.Len(), t.numKeys)
	}
	t.rankOf = make([]uint32, t.numKeys)
	seen := sbv.NewBuilder(t.numKeys)
	seen.PushRun(false, t.numKeys)
	for r := 0; r < t.ids.Len(); r++ {
		id := t.ids.Get(r)
		if id >= t.numKeys || seen.Get(id) {
			return corrupt("id %d is out of range or repeated", id)
		}
		seen.Set(id)
		t.rankOf[id] = uint32(r)
	}
	return nil
}

// validate checks that the LOUDS sequence describes a BFS-numbered tree
// matching the per-node arrays, with siblings in label order.
func (lv *level) validate() error {
	nodes := lv.numNodes()
	if nodes == 0 {
		return fmt.Errorf("no root")
	}
	if lv.louds.Len() != 2*nodes+2 || lv.louds.NumOnes() != nodes {
		return fmt.Errorf("louds has %d bits and %d ones for %d nodes", lv.louds.Len(), lv.louds.NumOnes(), nodes)
	}
	if lv.terminal.Len() != nodes || lv.link.Len() != nodes {
		return fmt.Errorf("per-node vectors do not cover %d nodes", nodes)
	}
	if uint64(lv.targets.Len()) != lv.link.NumOnes() {
		return fmt.Errorf("%d link targets for %d links", lv.targets.Len(), lv.link.NumOnes())
	}
	if !lv.louds.Get(0) || lv.louds.Get(1) || lv.louds.Get(lv.louds.Len()-1) || lv.link.Get(0) {
		return fmt.Errorf("malformed super root")
	}

	child := uint64(1)
	zeros := uint64(1)
	var numL1Nodes uint64
	first := true
	var prevLabel byte
	for p := uint64(2); p < lv.louds.Len()-1; p++ {
		if !lv.louds.Get(p) {
			zeros++
			first = true
			continue
		}
		parent := zeros - 1
		if parent >= child {
			return fmt.Errorf("node %d has parent %d", child, parent)
		}
		if !first && lv.labels[child] <= prevLabel {
			return fmt.Errorf("node %d breaks sibling order", child)
		}
		if parent == 0 {
			numL1Nodes++
		}
		prevLabel = lv.labels[child]
		first = false
		child++
	}
	if numL1Nodes != lv.numL1Nodes {
		return fmt.Errorf("root has %d children, header says %d", numL1Nodes, lv.numL1Nodes)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruptFormat}, args...)...)
}

type encoder struct {
	buf []byte
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) pad() {
	for len(e.buf)%8 != 0 {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) words(words []uint64) {
	for _, w := range words {
		e.u64(w)
	}
}

func (e *encoder) bytes(b []byte) {
	e.u64(uint64(len(b)))
	e.buf = append(e.buf, b...)
	e.pad()
}

func (e *encoder) vector(v *sbv.Vector) {
	words := v.Words()
	e.u64(v.Len())
	e.u64(uint64(len(words) * 8))
	e.words(words)
	ranks := v.RankTable()
	e.u64(uint64(len(ranks)))
	for _, r := range ranks {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, r)
	}
	e.pad()
}

func (e *encoder) packed(p bits.PackedArray) {
	e.u64(uint64(p.Len()))
	e.u64(uint64(p.Width()))
	e.u64(uint64(len(p.Words()) * 8))
	e.words(p.Words())
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) take(n uint64, what string) ([]byte, error) {
	if n > uint64(len(d.data)-d.off) {
		return nil, corrupt("truncated %s", what)
	}
	b := d.data[d.off : d.off+int(n)]
	d.off += int(n)
	return b, nil
}

func (d *decoder) u64(what string) (uint64, error) {
	b, err := d.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) pad(what string) error {
	_, err := d.take(uint64((8-d.off%8)%8), what)
	return err
}

func (d *decoder) bytes(what string) ([]byte, error) {
	n, err := d.u64(what)
	if err != nil {
		return nil, err
	}
	b, err := d.take(n, what)
	if err != nil {
		return nil, err
	}
	return b, d.pad(what)
}

func (d *decoder) vector(what string) (*sbv.Vector, error) {
	numBits, err := d.u64(what)
	if err != nil {
		return nil, err
	}
	if numBits > math.MaxUint32 {
		return nil, corrupt("%s: %d bits", what, numBits)
	}
	wordBytes, err := d.u64(what)
	if err != nil {
		return nil, err
	}
	if wordBytes != (numBits+63)/64*8 {
		return nil, corrupt("%s: %d word bytes for %d bits", what, wordBytes, numBits)
	}
	raw, err := d.take(wordBytes, what)
	if err != nil {
		return nil, err
	}
	blocks, err := d.u64(what)
	if err != nil {
		return nil, err
	}
	if blocks != (numBits+sbv.BlockBits-1)/sbv.BlockBits+1 {
		return nil, corrupt("%s: %d rank entries for %d bits", what, blocks, numBits)
	}
	rawRanks, err := d.take(blocks*4, what)
	if err != nil {
		return nil, err
	}
	if err := d.pad(what); err != nil {
		return nil, err
	}
	v, err := sbv.FromParts(asWords(raw), numBits, asUint32s(rawRanks))
	if err != nil {
		return nil, corrupt("%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) packed(what string) (bits.PackedArray, error) {
	n, err := d.u64(what)
	if err != nil {
		return bits.PackedArray{}, err
	}
	width, err := d.u64(what)
	if err != nil {
		return bits.PackedArray{}, err
	}
	wordBytes, err := d.u64(what)
	if err != nil {
		return bits.PackedArray{}, err
	}
	if n > math.MaxUint32 || width > 64 || wordBytes%8 != 0 {
		return bits.PackedArray{}, corrupt("%s: %d values of %d bits in %d bytes", what, n, width, wordBytes)
	}
	raw, err := d.take(wordBytes, what)
	if err != nil {
		return bits.PackedArray{}, err
	}
	p, ok := bits.PackedArrayFromWords(asWords(raw), int(n), int(width))
	if !ok {
		return bits.PackedArray{}, corrupt("%s: %d values of %d bits in %d bytes", what, n, width, wordBytes)
	}
	return p, nil
}

func (d *decoder) level(lv *level, i int) error {
	what := fmt.Sprintf("level %d", i+1)
	var err error
	if lv.numL1Nodes, err = d.u64(what); err != nil {
		return err
	}
	if lv.louds, err = d.vector(what + " louds"); err != nil {
		return err
	}
	if lv.terminal, err = d.vector(what + " terminal"); err != nil {
		return err
	}
	if lv.labels, err = d.bytes(what + " labels"); err != nil {
		return err
	}
	if lv.link, err = d.vector(what + " link"); err != nil {
		return err
	}
	lv.targets, err = d.packed(what + " targets")
	return err
}

func hostLittleEndian() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}

// asWords views b as little-endian words, without copying when possible.
func asWords(b []byte) []uint64 {
	if len(b) == 0 {
		return nil
	}
	if hostLittleEndian() && uintptr(unsafe.Pointer(&b[0]))%8 == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8)
	}
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return out
}

func asUint32s(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	if hostLittleEndian() && uintptr(unsafe.Pointer(&b[0]))%4 == 0 {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

// alignedCopy copies data into 8-byte aligned memory.
func alignedCopy(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	words := make([]uint64, (len(data)+7)/8)
	out := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(data))
	copy(out, data)
	return out
}
