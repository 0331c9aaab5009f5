package louds

import (
	"fmt"
	"iter"
	"math/rand"
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/stretchr/testify/require"

	"github.com/ozzymcduff/marisa-trie/keyset"
)

func buildStrings(t testing.TB, cfg Config, keys ...string) *Trie {
	ks := keyset.New()
	for _, k := range keys {
		ks.PushString(k)
	}
	tr, err := Build(ks, cfg)
	require.NoError(t, err)
	return tr
}

func configName(cfg Config) string {
	return fmt.Sprintf("levels=%d/tail=%v/order=%v", cfg.NumLevels, cfg.TailMode, cfg.IDOrder)
}

// allConfigs returns every combination of levels, tail mode and ID order.
func allConfigs() []Config {
	var out []Config
	for _, levels := range []int{1, 2, 3, 5} {
		for _, tm := range []TailMode{TailNone, TailWholeSuffix, TailLongestCommonSuffix} {
			for _, order := range []IDOrder{IDOrderDepthFirst, IDOrderInsertion, IDOrderWeight} {
				cfg := DefaultConfig()
				cfg.NumLevels = levels
				cfg.TailMode = tm
				cfg.IDOrder = order
				out = append(out, cfg)
			}
		}
	}
	return out
}

// genKeys returns n keys with plenty of shared prefixes and suffixes, some
// binary bytes and possibly the empty key.
func genKeys(r *rand.Rand, n int) []string {
	stems := []string{"", "a", "ab", "abc", "inter", "national", "\x00", "\xff\xfe", "zz"}
	alphabet := []byte{'a', 'b', 'c', 'x', 0, 0xff}
	keys := make([]string, 0, n)
	for len(keys) < n {
		switch r.Intn(3) {
		case 0:
			k := make([]byte, r.Intn(12))
			for i := range k {
				k[i] = alphabet[r.Intn(len(alphabet))]
			}
			keys = append(keys, string(k))
		case 1:
			keys = append(keys, stems[r.Intn(len(stems))]+stems[r.Intn(len(stems))]+stems[r.Intn(len(stems))])
		default:
			k := make([]byte, 1+r.Intn(40))
			for i := range k {
				k[i] = byte('a' + r.Intn(26))
			}
			keys = append(keys, stems[r.Intn(len(stems))]+string(k)+"ing")
		}
	}
	return keys
}

func genProbes(r *rand.Rand, keys []string, n int) []string {
	probes := []string{"", "a", "zzz", "\x00", "national", "internationa"}
	for i := 0; i < n && len(keys) > 0; i++ {
		k := keys[r.Intn(len(keys))]
		switch r.Intn(4) {
		case 0:
			probes = append(probes, k[:r.Intn(len(k)+1)])
		case 1:
			probes = append(probes, k+"x")
		case 2:
			if len(k) > 0 {
				b := []byte(k)
				b[r.Intn(len(b))] ^= 1
				probes = append(probes, string(b))
			}
		default:
			probes = append(probes, k+keys[r.Intn(len(keys))])
		}
	}
	return probes
}

func oracleOf(keys []string) *iradix.Tree {
	txn := iradix.New().Txn()
	for _, k := range keys {
		txn.Insert([]byte(k), struct{}{})
	}
	return txn.Commit()
}

type result struct {
	id  uint32
	key string
}

func collect(seq iter.Seq2[uint32, []byte]) []result {
	var out []result
	for id, key := range seq {
		out = append(out, result{id: id, key: string(key)})
	}
	return out
}

func keysOf(rs []result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.key
	}
	return out
}

func predictiveOracle(tree *iradix.Tree, prefix string) []string {
	out := []string{}
	tree.Root().WalkPrefix([]byte(prefix), func(k []byte, _ interface{}) bool {
		out = append(out, string(k))
		return false
	})
	return out
}

func commonPrefixOracle(tree *iradix.Tree, q string) []string {
	out := []string{}
	tree.Root().WalkPath([]byte(q), func(k []byte, _ interface{}) bool {
		out = append(out, string(k))
		return false
	})
	return out
}

// checkTrie verifies every query of tr against a radix tree of keys.
func checkTrie(t *testing.T, tr *Trie, keys []string, probes []string) {
	t.Helper()
	tree := oracleOf(keys)
	require.Equal(t, uint64(tree.Len()), tr.NumKeys())

	seen := make(map[uint32]string, tree.Len())
	for _, k := range keys {
		id, ok := tr.LookupString(k)
		require.True(t, ok, "lookup %q", k)
		require.Less(t, uint64(id), tr.NumKeys())
		if prev, dup := seen[id]; dup {
			require.Equal(t, prev, k, "id %d shared by %q and %q", id, prev, k)
		}
		seen[id] = k

		back, err := tr.ReverseLookup(id)
		require.NoError(t, err)
		require.Equal(t, k, string(back))
	}
	require.Len(t, seen, tree.Len())

	for _, p := range probes {
		_, stored := tree.Get([]byte(p))
		_, ok := tr.Lookup([]byte(p))
		require.Equal(t, stored, ok, "lookup %q", p)

		predicted := collect(tr.PredictiveSearch([]byte(p)))
		require.Equal(t, predictiveOracle(tree, p), keysOf(predicted), "predictive %q", p)
		for _, r := range predicted {
			id, _ := tr.LookupString(r.key)
			require.Equal(t, id, r.id, "predictive id of %q", r.key)
		}

		prefixes := collect(tr.CommonPrefixSearch([]byte(p)))
		require.Equal(t, commonPrefixOracle(tree, p), keysOf(prefixes), "common prefix %q", p)
		for _, r := range prefixes {
			id, _ := tr.LookupString(r.key)
			require.Equal(t, id, r.id, "common prefix id of %q", r.key)
		}
	}
}
