package louds

import (
	"fmt"
	"unsafe"
)

type queryKind uint8

const (
	queryUnset queryKind = iota
	queryBytes
	queryID
)

// frame is one node of the predictive search in progress.
type frame struct {
	node    uint64
	keyLen  int    // key bytes up to and including the edge into node
	cursor  uint64 // LOUDS position of the next child to visit
	entered bool
}

// Agent carries the mutable state of queries against a Trie. It is not safe
// for concurrent use; give every goroutine its own Agent.
type Agent struct {
	trie *Trie

	kind    queryKind
	query   []byte
	queryID uint32

	id  uint32
	key []byte

	started bool
	done    bool
	node    uint64 // common prefix search
	pos     int    // common prefix search
	stack   []frame
}

func NewAgent(t *Trie) *Agent {
	return &Agent{trie: t}
}

// SetQuery sets a byte-string query and discards any enumeration in progress.
func (a *Agent) SetQuery(q []byte) {
	a.reset(queryBytes)
	a.query = append(a.query[:0], q...)
}

func (a *Agent) SetQueryString(q string) {
	a.SetQuery(unsafe.Slice(unsafe.StringData(q), len(q)))
}

// SetQueryID sets an ID query for ReverseLookup.
func (a *Agent) SetQueryID(id uint32) error {
	if uint64(id) >= a.trie.numKeys {
		a.reset(queryUnset)
		return fmt.Errorf("%w: %d >= %d", ErrOutOfRange, id, a.trie.numKeys)
	}
	a.reset(queryID)
	a.queryID = id
	return nil
}

func (a *Agent) reset(kind queryKind) {
	a.kind = kind
	a.query = a.query[:0]
	a.key = a.key[:0]
	a.id = 0
	a.started = false
	a.done = false
	a.node = 0
	a.pos = 0
	a.stack = a.stack[:0]
}

// ID returns the ID of the last result.
func (a *Agent) ID() uint32 { return a.id }

// Key returns the last result. It is valid until the next call on a.
func (a *Agent) Key() []byte { return a.key }

// Lookup reports whether the byte-string query is a stored key.
func (a *Agent) Lookup() bool {
	if a.kind != queryBytes {
		return false
	}
	id, ok := a.trie.Lookup(a.query)
	if !ok {
		return false
	}
	a.id = id
	a.key = append(a.key[:0], a.query...)
	return true
}

// ReverseLookup restores the key of the ID query.
func (a *Agent) ReverseLookup() error {
	if a.kind != queryID {
		return ErrQueryNotSet
	}
	a.id = a.queryID
	a.key = a.trie.appendKey(a.key[:0], a.trie.nodeOf(a.queryID))
	return nil
}

// AdvanceCommonPrefix moves to the next stored key that is a prefix of the
// query, shortest first.
func (a *Agent) AdvanceCommonPrefix() (bool, error) {
	if a.kind != queryBytes {
		return false, ErrQueryNotSet
	}
	if a.done {
		return false, nil
	}
	t := a.trie
	lv := &t.levels[0]
	if !a.started {
		a.started = true
		if lv.terminal.Get(0) {
			a.id = t.idOf(0)
			a.key = a.key[:0]
			return true, nil
		}
	}
	for a.pos < len(a.query) {
		child, ok := t.findChild(a.node, a.query, &a.pos)
		if !ok {
			break
		}
		a.node = child
		if lv.terminal.Get(child) {
			a.id = t.idOf(child)
			a.key = append(a.key[:0], a.query[:a.pos]...)
			return true, nil
		}
	}
	a.done = true
	return false, nil
}

// AdvancePredictive moves to the next stored key that starts with the query,
// in ascending byte order.
func (a *Agent) AdvancePredictive() (bool, error) {
	if a.kind != queryBytes {
		return false, ErrQueryNotSet
	}
	if a.done {
		return false, nil
	}
	t := a.trie
	lv := &t.levels[0]
	if !a.started {
		a.started = true
		node, key, ok := t.descendPrefix(a.query, a.key[:0])
		a.key = key
		if !ok {
			a.done = true
			return false, nil
		}
		a.stack = append(a.stack[:0], frame{node: node, keyLen: len(key)})
	}

	for len(a.stack) > 0 {
		f := &a.stack[len(a.stack)-1]
		if !f.entered {
			f.entered = true
			f.cursor = lv.childPos(f.node)
			if lv.terminal.Get(f.node) {
				a.id = t.idOf(f.node)
				a.key = a.key[:f.keyLen]
				return true, nil
			}
			continue
		}
		if !lv.louds.Get(f.cursor) {
			a.stack = a.stack[:len(a.stack)-1]
			continue
		}
		child := f.cursor - f.node - 1
		f.cursor++
		a.key = t.appendEdge(a.key[:f.keyLen], 0, child)
		a.stack = append(a.stack, frame{node: child, keyLen: len(a.key)})
	}
	a.done = true
	return false, nil
}
