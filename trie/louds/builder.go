package louds

import (
	"bytes"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/ozzymcduff/marisa-trie/bits"
	"github.com/ozzymcduff/marisa-trie/errutil"
	"github.com/ozzymcduff/marisa-trie/keyset"
	sbv "github.com/ozzymcduff/marisa-trie/succinct_bit_vector"
)

// below this many items a parallel sort costs more than it saves
const parallelSortThreshold = 1 << 12

type entry struct {
	key    []byte
	weight float64
	first  int // insertion index of the first occurrence
}

// Build constructs an immutable Trie from ks. Duplicate keys are merged and
// their weights summed. An empty key set yields a trie with zero keys.
func Build(ks *keyset.KeySet, cfg Config) (*Trie, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()
	start := time.Now()

	entries := sortedEntries(ks, cfg.Workers)
	keys := make([][]byte, len(entries))
	for i := range entries {
		keys[i] = entries[i].key
	}
	checked := keyset.NewCheckedSortedIterator(keyset.NewSliceIterator(keys))
	for checked.Next() {
	}
	log.Debug("sorted keys",
		zap.Int("pushed", ks.Len()),
		zap.Int("unique", len(keys)),
		zap.Int("bytes", ks.TotalLength()))

	t := &Trie{
		numKeys:  uint64(len(keys)),
		tailMode: cfg.TailMode,
		idOrder:  cfg.IDOrder,
		tail:     tail{ends: sbv.NewBuilder(0).Build()},
	}

	var keyNodes []uint64
	levelKeys := keys
	var pending []int // link i of the previous level targets levelKeys[pending[i]]
	for li := 0; ; li++ {
		last := li == cfg.NumLevels-1
		built := buildLevel(levelKeys, !last || cfg.TailMode != TailNone)
		t.levels = append(t.levels, built.lv)
		if li == 0 {
			keyNodes = built.terminalOf
		} else {
			targets := make([]uint64, len(pending))
			for i, k := range pending {
				targets[i] = built.terminalOf[k]
			}
			t.levels[li-1].targets = bits.NewPackedArray(targets)
		}
		log.Debug("built level",
			zap.Int("level", li+1),
			zap.Int("keys", len(levelKeys)),
			zap.Uint64("nodes", built.lv.numNodes()),
			zap.Int("links", len(built.links)))

		if len(built.links) == 0 {
			break
		}

		// Walking up the next level has to emit what this level reads
		// downward. Level one reads its edges top-down; deeper levels
		// read them bottom-up.
		if last {
			emitted := built.links
			if li > 0 {
				emitted = make([][]byte, len(built.links))
				for i, d := range built.links {
					emitted[i] = bits.Reverse(d)
				}
			}
			tl, offsets := buildTail(emitted, cfg.TailMode)
			t.tail = tl
			t.levels[li].targets = bits.NewPackedArray(offsets)
			log.Debug("built tail",
				zap.Int("entries", len(emitted)),
				zap.Int("bytes", len(tl.buf)),
				zap.Stringer("mode", cfg.TailMode))
			break
		}

		next := built.links
		if li == 0 {
			next = make([][]byte, len(built.links))
			for i, d := range built.links {
				next[i] = bits.Reverse(d)
			}
		}
		levelKeys, pending = sortUnique(next, cfg.Workers)
	}

	ids := assignIDs(entries, cfg.IDOrder)
	lv0 := &t.levels[0]
	idByRank := make([]uint64, len(entries))
	for i, node := range keyNodes {
		idByRank[lv0.terminal.Rank1(node)] = uint64(ids[i])
	}
	t.ids = bits.NewPackedArray(idByRank)
	t.rankOf = reverseIndex(t.ids)

	if cfg.KeepWeights {
		t.weights = make([]float64, len(entries))
		for i := range entries {
			t.weights[ids[i]] = entries[i].weight
		}
	}

	log.Debug("built trie",
		zap.Int("levels", len(t.levels)),
		zap.Uint64("keys", t.numKeys),
		zap.Int("bytes", t.ByteSize()),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// sortedEntries returns the keys of ks sorted and deduplicated.
func sortedEntries(ks *keyset.KeySet, workers int) []entry {
	entries := make([]entry, 0, ks.Len())
	it := ks.Iterator()
	for it.Next() {
		entries = append(entries, entry{key: it.Value(), weight: it.Weight(), first: len(entries)})
	}
	sortPartitioned(entries, func(e entry) []byte { return e.key }, workers)

	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && bytes.Equal(out[n-1].key, e.key) {
			out[n-1].weight += e.weight
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortUnique sorts and deduplicates keys. index[i] is the position of keys[i]
// in unique.
func sortUnique(keys [][]byte, workers int) (unique [][]byte, index []int) {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sortPartitioned(order, func(i int) []byte { return keys[i] }, workers)

	index = make([]int, len(keys))
	for _, i := range order {
		if n := len(unique); n == 0 || !bytes.Equal(unique[n-1], keys[i]) {
			unique = append(unique, keys[i])
		}
		index[i] = len(unique) - 1
	}
	return unique, index
}

// sortPartitioned stable-sorts items by key. With several workers the items
// are first distributed by leading byte and every partition is sorted on
// its own goroutine, which yields exactly the sequential order.
func sortPartitioned[T any](items []T, keyOf func(T) []byte, workers int) {
	less := func(a, b T) bool {
		return bytes.Compare(keyOf(a), keyOf(b)) < 0
	}
	if workers <= 1 || len(items) < parallelSortThreshold {
		slices.SortStableFunc(items, less)
		return
	}

	// partition 0 holds empty keys, partition b+1 keys starting with b
	partitionOf := func(x T) int {
		k := keyOf(x)
		if len(k) == 0 {
			return 0
		}
		return int(k[0]) + 1
	}
	var starts [258]int
	for _, x := range items {
		starts[partitionOf(x)+1]++
	}
	for p := 1; p < len(starts); p++ {
		starts[p] += starts[p-1]
	}
	next := starts
	tmp := make([]T, len(items))
	for _, x := range items {
		p := partitionOf(x)
		tmp[next[p]] = x
		next[p]++
	}
	copy(items, tmp)

	jobs := make(chan []T)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for part := range jobs {
				slices.SortStableFunc(part, less)
			}
		}()
	}
	// empty keys are all equal and already in input order
	for p := 1; p < len(starts)-1; p++ {
		if starts[p+1]-starts[p] > 1 {
			jobs <- items[starts[p]:starts[p+1]]
		}
	}
	close(jobs)
	wg.Wait()
}

// assignIDs returns the ID of every sorted entry.
func assignIDs(entries []entry, order IDOrder) []uint32 {
	ids := make([]uint32, len(entries))
	if order == IDOrderDepthFirst {
		for i := range ids {
			ids[i] = uint32(i)
		}
		return ids
	}

	perm := make([]int, len(entries))
	for i := range perm {
		perm[i] = i
	}
	switch order {
	case IDOrderInsertion:
		slices.SortFunc(perm, func(a, b int) bool {
			return entries[a].first < entries[b].first
		})
	case IDOrderWeight:
		slices.SortFunc(perm, func(a, b int) bool {
			wa, wb := entries[a].weight, entries[b].weight
			if wa != wb {
				return wa > wb
			}
			return entries[a].first < entries[b].first
		})
	default:
		errutil.Bug("unknown id order %v", order)
	}
	for id, i := range perm {
		ids[i] = uint32(id)
	}
	return ids
}

// reverseIndex maps every ID back to its terminal rank.
func reverseIndex(ids bits.PackedArray) []uint32 {
	rankOf := make([]uint32, ids.Len())
	for r := 0; r < ids.Len(); r++ {
		rankOf[ids.Get(r)] = uint32(r)
	}
	return rankOf
}
