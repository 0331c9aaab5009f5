// Package louds implements a static cascading succinct trie. Keys are laid
// out as a LOUDS trie whose multi-byte edges are stored, reversed, as keys of
// a further LOUDS trie; the last level keeps its edges in a suffix-shared
// tail. Every key gets a dense ID in [0, NumKeys()).
package louds

import (
	"bytes"
	"fmt"
	"iter"
	"strings"
	"unsafe"

	"github.com/ozzymcduff/marisa-trie/bits"
	"github.com/ozzymcduff/marisa-trie/utils"
)

// Trie is immutable and safe for concurrent use.
type Trie struct {
	levels []level
	tail   tail

	ids     bits.PackedArray // terminal rank of level one -> key ID
	rankOf  []uint32         // key ID -> terminal rank, rebuilt on load
	weights []float64        // by key ID; nil unless weights were kept

	numKeys  uint64
	tailMode TailMode
	idOrder  IDOrder
}

func (t *Trie) NumKeys() uint64 { return t.numKeys }
func (t *Trie) NumLevels() int { return len(t.levels) }
func (t *Trie) TailMode() TailMode { return t.tailMode }
func (t *Trie) IDOrder() IDOrder { return t.idOrder }
func (t *Trie) HasWeights() bool { return t.weights != nil }

// NumNodes returns the node count summed over all levels.
func (t *Trie) NumNodes() uint64 {
	var n uint64
	for i := range t.levels {
		n += t.levels[i].numNodes()
	}
	return n
}

// Weight returns the summed weight pushed for key id.
func (t *Trie) Weight(id uint32) (float64, error) {
	if t.weights == nil {
		return 0, ErrNoWeights
	}
	if uint64(id) >= t.numKeys {
		return 0, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, id, t.numKeys)
	}
	return t.weights[id], nil
}

// Lookup returns the ID of q if q is a stored key.
func (t *Trie) Lookup(q []byte) (uint32, bool) {
	node := uint64(0)
	for pos := 0; pos < len(q); {
		child, ok := t.findChild(node, q, &pos)
		if !ok {
			return 0, false
		}
		node = child
	}
	if !t.levels[0].terminal.Get(node) {
		return 0, false
	}
	return t.idOf(node), true
}

func (t *Trie) LookupString(q string) (uint32, bool) {
	return t.Lookup(unsafe.Slice(unsafe.StringData(q), len(q)))
}

// ReverseLookup returns the key with the given ID.
func (t *Trie) ReverseLookup(id uint32) ([]byte, error) {
	if uint64(id) >= t.numKeys {
		return nil, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, id, t.numKeys)
	}
	return t.appendKey(nil, t.nodeOf(id)), nil
}

// CommonPrefixSearch yields every stored key that is a prefix of q, shortest
// first. The yielded slice is only valid during the iteration step.
func (t *Trie) CommonPrefixSearch(q []byte) iter.Seq2[uint32, []byte] {
	return func(yield func(uint32, []byte) bool) {
		a := NewAgent(t)
		a.SetQuery(q)
		for {
			ok, _ := a.AdvanceCommonPrefix()
			if !ok || !yield(a.ID(), a.Key()) {
				return
			}
		}
	}
}

// PredictiveSearch yields every stored key starting with prefix in ascending
// byte order. The yielded slice is only valid during the iteration step.
func (t *Trie) PredictiveSearch(prefix []byte) iter.Seq2[uint32, []byte] {
	return func(yield func(uint32, []byte) bool) {
		a := NewAgent(t)
		a.SetQuery(prefix)
		for {
			ok, _ := a.AdvancePredictive()
			if !ok || !yield(a.ID(), a.Key()) {
				return
			}
		}
	}
}

func (t *Trie) idOf(node uint64) uint32 {
	lv := &t.levels[0]
	return uint32(t.ids.Get(int(lv.terminal.Rank1(node))))
}

func (t *Trie) nodeOf(id uint32) uint64 {
	return t.levels[0].terminal.Select1(uint64(t.rankOf[id]))
}

// findChild follows the child of node whose edge matches q at *pos and
// advances *pos past the edge.
func (t *Trie) findChild(node uint64, q []byte, pos *int) (uint64, bool) {
	lv := &t.levels[0]
	c := q[*pos]
	for p := lv.childPos(node); lv.louds.Get(p); p++ {
		child := p - node - 1
		label := lv.labels[child]
		if label < c {
			continue
		}
		if label > c {
			return 0, false
		}
		// siblings never share a first byte
		if t.matchEdge(0, child, q, pos) {
			return child, true
		}
		return 0, false
	}
	return 0, false
}

// matchEdge consumes the edge into node of level li from q[*pos:].
func (t *Trie) matchEdge(li int, node uint64, q []byte, pos *int) bool {
	lv := &t.levels[li]
	if lv.link.Get(node) {
		target := lv.target(node)
		if li == len(t.levels)-1 {
			return t.tail.match(q, pos, target)
		}
		return t.matchUp(li+1, target, q, pos)
	}
	if *pos >= len(q) || q[*pos] != lv.labels[node] {
		return false
	}
	*pos++
	return true
}

// matchUp consumes the string emitted by walking level li up from node.
func (t *Trie) matchUp(li int, node uint64, q []byte, pos *int) bool {
	lv := &t.levels[li]
	for {
		if !t.matchEdge(li, node, q, pos) {
			return false
		}
		if node <= lv.numL1Nodes {
			return true
		}
		node = lv.parent(node)
	}
}

// appendEdge appends the bytes of the edge into node of level li.
func (t *Trie) appendEdge(dst []byte, li int, node uint64) []byte {
	lv := &t.levels[li]
	if !lv.link.Get(node) {
		return append(dst, lv.labels[node])
	}
	target := lv.target(node)
	if li == len(t.levels)-1 {
		return t.tail.restore(dst, target)
	}
	return t.restoreUp(dst, li+1, target)
}

// restoreUp appends the string emitted by walking level li up from node.
func (t *Trie) restoreUp(dst []byte, li int, node uint64) []byte {
	lv := &t.levels[li]
	for {
		dst = t.appendEdge(dst, li, node)
		if node <= lv.numL1Nodes {
			return dst
		}
		node = lv.parent(node)
	}
}

// appendKey appends the key ending at a level one node.
func (t *Trie) appendKey(dst []byte, node uint64) []byte {
	lv := &t.levels[0]
	base := len(dst)
	for node != 0 {
		start := len(dst)
		dst = t.appendEdge(dst, 0, node)
		bits.ReverseInPlace(dst[start:])
		node = lv.parent(node)
	}
	bits.ReverseInPlace(dst[base:])
	return dst
}

// descendPrefix walks level one along prefix. The prefix may end inside an
// edge; key receives the bytes up to the returned node.
func (t *Trie) descendPrefix(prefix []byte, key []byte) (uint64, []byte, bool) {
	lv := &t.levels[0]
	node := uint64(0)
	for pos := 0; pos < len(prefix); {
		c := prefix[pos]
		found := false
		for p := lv.childPos(node); lv.louds.Get(p); p++ {
			child := p - node - 1
			if lv.labels[child] < c {
				continue
			}
			if lv.labels[child] == c {
				start := len(key)
				key = t.appendEdge(key, 0, child)
				edge := key[start:]
				n := min(len(edge), len(prefix)-pos)
				if !bytes.Equal(edge[:n], prefix[pos:pos+n]) {
					return 0, key, false
				}
				pos += n
				node = child
				found = true
			}
			break
		}
		if !found {
			return 0, key, false
		}
	}
	return node, key, true
}

// ByteSize returns the resident size estimate in bytes.
func (t *Trie) ByteSize() int {
	if t == nil {
		return 0
	}
	size := int(unsafe.Sizeof(*t))
	for i := range t.levels {
		size += t.levels[i].byteSize()
	}
	size += t.tail.byteSize()
	size += t.ids.ByteSize() + len(t.rankOf)*4 + len(t.weights)*8
	return size
}

// MemDetailed returns a detailed memory usage report for Trie.
func (t *Trie) MemDetailed() utils.MemReport {
	if t == nil {
		return utils.MemReport{Name: "Trie", TotalBytes: 0}
	}

	children := []utils.MemReport{
		{Name: "header", TotalBytes: int(unsafe.Sizeof(*t))},
	}
	for i := range t.levels {
		lv := &t.levels[i]
		children = append(children, utils.MemReport{
			Name:       fmt.Sprintf("level_%d", i+1),
			TotalBytes: lv.byteSize(),
			Children: []utils.MemReport{
				{Name: "louds", TotalBytes: lv.louds.ByteSize()},
				{Name: "terminal", TotalBytes: lv.terminal.ByteSize()},
				{Name: "labels", TotalBytes: len(lv.labels)},
				{Name: "link", TotalBytes: lv.link.ByteSize()},
				{Name: "targets", TotalBytes: lv.targets.ByteSize()},
			},
		})
	}
	children = append(children,
		utils.MemReport{
			Name:       "tail",
			TotalBytes: t.tail.byteSize(),
			Children: []utils.MemReport{
				{Name: "bytes", TotalBytes: len(t.tail.buf)},
				{Name: "ends", TotalBytes: t.tail.ends.ByteSize()},
			},
		},
		utils.MemReport{Name: "ids", TotalBytes: t.ids.ByteSize()},
		utils.MemReport{Name: "rank_index", TotalBytes: len(t.rankOf) * 4},
	)
	if t.weights != nil {
		children = append(children, utils.MemReport{Name: "weights", TotalBytes: len(t.weights) * 8})
	}

	return utils.MemReport{
		Name:       "Trie",
		TotalBytes: t.ByteSize(),
		Children:   children,
	}
}

func (t *Trie) String() string {
	var sb strings.Builder
	sb.WriteString("Trie:\n")
	sb.WriteString(fmt.Sprintf("| keys: %d\n", t.numKeys))
	sb.WriteString(fmt.Sprintf("| tail mode: %v, id order: %v, weights: %t\n", t.tailMode, t.idOrder, t.HasWeights()))
	for i := range t.levels {
		lv := &t.levels[i]
		sb.WriteString(fmt.Sprintf("| level %d: nodes %d, root children %d, links %d, terminals %d\n",
			i+1, lv.numNodes(), lv.numL1Nodes, lv.link.NumOnes(), lv.terminal.NumOnes()))
	}
	sb.WriteString(fmt.Sprintf("| tail bytes: %d\n", len(t.tail.buf)))
	return sb.String()
}
