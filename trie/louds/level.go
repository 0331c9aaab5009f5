package louds

import (
	"github.com/ozzymcduff/marisa-trie/bits"
	sbv "github.com/ozzymcduff/marisa-trie/succinct_bit_vector"
)

// level is one trie of the cascade. Nodes are numbered in BFS order with the
// root as node 0. The LOUDS sequence starts with the super-root "10"; after
// that every node contributes one 1 per child and a closing 0, and a final 0
// ends the sequence. So the n-th one is node n, the children of n start right
// after the n-th zero, and every node after the root has a smaller parent.
type level struct {
	numL1Nodes uint64 // children of the root; upward walks stop at them

	louds    *sbv.Vector
	terminal *sbv.Vector // per node
	labels   []byte      // per node, first byte of the incoming edge
	link     *sbv.Vector // per node, incoming edge spans several bytes
	targets  bits.PackedArray
}

func (lv *level) numNodes() uint64 {
	return uint64(len(lv.labels))
}

// childPos returns the LOUDS position of the first child slot of node.
func (lv *level) childPos(node uint64) uint64 {
	return lv.louds.Select0(node) + 1
}

func (lv *level) parent(node uint64) uint64 {
	return lv.louds.Select1(node) - node - 1
}

// target returns the next-level node (or tail offset) of a link node.
func (lv *level) target(node uint64) uint64 {
	return lv.targets.Get(int(lv.link.Rank1(node)))
}

func (lv *level) byteSize() int {
	return lv.louds.ByteSize() + lv.terminal.ByteSize() + len(lv.labels) +
		lv.link.ByteSize() + lv.targets.ByteSize()
}

type builtLevel struct {
	lv         level
	links      [][]byte // bytes of every link edge, top-down, in node order
	terminalOf []uint64 // node where each input key ends
}

// buildLevel lays out sorted unique keys as a LOUDS trie. With allowLinks a
// child whose keys share more than one byte gets a single link edge holding
// the whole shared run; otherwise every edge is one byte.
func buildLevel(keys [][]byte, allowLinks bool) builtLevel {
	type span struct {
		begin, end int
		depth      int
	}

	louds := sbv.NewBuilder(uint64(2*len(keys) + 4))
	terminal := sbv.NewBuilder(uint64(len(keys) + 1))
	link := sbv.NewBuilder(uint64(len(keys) + 1))
	labels := []byte{0}
	terminalOf := make([]uint64, len(keys))
	var links [][]byte

	louds.PushBack(true)
	louds.PushBack(false)
	terminal.PushBack(len(keys) > 0 && len(keys[0]) == 0)
	link.PushBack(false)

	var numL1Nodes uint64
	queue := []span{{begin: 0, end: len(keys), depth: 0}}
	for head := 0; head < len(queue); head++ {
		s := queue[head]
		b := s.begin
		if b < s.end && len(keys[b]) == s.depth {
			b++
		}
		for b < s.end {
			c := keys[b][s.depth]
			e := b + 1
			for e < s.end && keys[e][s.depth] == c {
				e++
			}

			edge := 1
			if allowLinks {
				edge = bits.LCP(keys[b][s.depth:], keys[e-1][s.depth:])
			}

			node := uint64(len(labels))
			labels = append(labels, c)
			louds.PushBack(true)
			if edge > 1 {
				link.PushBack(true)
				links = append(links, keys[b][s.depth:s.depth+edge])
			} else {
				link.PushBack(false)
			}
			ends := len(keys[b]) == s.depth+edge
			terminal.PushBack(ends)
			if ends {
				terminalOf[b] = node
			}
			if head == 0 {
				numL1Nodes++
			}

			queue = append(queue, span{begin: b, end: e, depth: s.depth + edge})
			b = e
		}
		louds.PushBack(false)
	}
	louds.PushBack(false)

	return builtLevel{
		lv: level{
			numL1Nodes: numL1Nodes,
			louds:      louds.Build(),
			terminal:   terminal.Build(),
			labels:     labels,
			link:       link.Build(),
		},
		links:      links,
		terminalOf: terminalOf,
	}
}
