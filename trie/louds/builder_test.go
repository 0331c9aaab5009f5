package louds

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/exp/slices"

	"github.com/ozzymcduff/marisa-trie/keyset"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultConfig().Validate())
	for _, levels := range []int{1, 17, 20, MaxLevels} {
		cfg := DefaultConfig()
		cfg.NumLevels = levels
		require.NoError(t, cfg.Validate(), "levels %d", levels)
	}

	bad := []Config{
		{NumLevels: 0},
		{NumLevels: -1},
		{NumLevels: MaxLevels + 1},
		{NumLevels: 1000},
		{NumLevels: 1, IDOrder: IDOrder(7)},
		{NumLevels: 1, TailMode: TailMode(9)},
		{NumLevels: 1, Workers: -2},
	}
	for _, cfg := range bad {
		require.ErrorIs(t, cfg.Validate(), ErrConfiguration, "%+v", cfg)
		_, err := Build(keyset.New(), cfg)
		require.ErrorIs(t, err, ErrConfiguration, "%+v", cfg)
	}
}

func TestParseModes(t *testing.T) {
	t.Parallel()
	for _, m := range []TailMode{TailNone, TailWholeSuffix, TailLongestCommonSuffix} {
		got, err := ParseTailMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	for _, o := range []IDOrder{IDOrderDepthFirst, IDOrderInsertion, IDOrderWeight} {
		got, err := ParseIDOrder(o.String())
		require.NoError(t, err)
		require.Equal(t, o, got)
	}
	_, err := ParseTailMode("zip")
	require.ErrorIs(t, err, ErrConfiguration)
	_, err = ParseIDOrder("random")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, "TailMode(9)", TailMode(9).String())
}

func TestBuildLevelShape(t *testing.T) {
	t.Parallel()
	built := buildLevel([][]byte{[]byte("a"), []byte("b")}, false)
	require.Equal(t, "10110000", built.lv.louds.String())
	require.Equal(t, uint64(2), built.lv.numL1Nodes)
	require.Equal(t, []byte{0, 'a', 'b'}, built.lv.labels)
	require.Equal(t, "011", built.lv.terminal.String())
	require.Equal(t, []uint64{1, 2}, built.terminalOf)
	require.Empty(t, built.links)

	// "" a ab abc abd: root(terminal) -> a(terminal) -> b(terminal) -> c, d
	built = buildLevel([][]byte{[]byte(""), []byte("a"), []byte("ab"), []byte("abc"), []byte("abd")}, false)
	require.Equal(t, "10"+"10"+"10"+"110"+"0"+"0"+"0", built.lv.louds.String())
	require.Equal(t, "11111", built.lv.terminal.String())
	require.Equal(t, uint64(1), built.lv.numL1Nodes)
	require.Equal(t, uint64(2), built.lv.parent(4))
	require.Equal(t, uint64(2), built.lv.parent(3))
	require.Equal(t, uint64(0), built.lv.parent(1))
}

func TestBuildLevelLinks(t *testing.T) {
	t.Parallel()
	keys := [][]byte{[]byte("card"), []byte("care"), []byte("dog")}
	built := buildLevel(keys, true)
	require.Equal(t, [][]byte{[]byte("car"), []byte("dog")}, built.links)
	require.Equal(t, []byte{0, 'c', 'd', 'd', 'e'}, built.lv.labels)
	require.Equal(t, "01100", built.lv.link.String())
	require.Equal(t, "00111", built.lv.terminal.String())
	require.Equal(t, []uint64{3, 4, 2}, built.terminalOf)
}

func TestBuildTail(t *testing.T) {
	t.Parallel()
	entries := [][]byte{[]byte("abcdef"), []byte("bcdef"), []byte("def"), []byte("xyz"), []byte("def"), []byte("a\x00z")}

	check := func(mode TailMode, wantBytes int) {
		tl, offsets := buildTail(entries, mode)
		require.Len(t, tl.buf, wantBytes, "mode %v", mode)
		for i, e := range entries {
			require.Equal(t, e, tl.restore(nil, offsets[i]), "entry %d", i)

			pos := 0
			require.True(t, tl.match(e, &pos, offsets[i]))
			require.Equal(t, len(e), pos)

			pos = 0
			require.False(t, tl.match(e[:len(e)-1], &pos, offsets[i]))
		}
	}
	check(TailWholeSuffix, 6+5+3+3+3+3)
	check(TailLongestCommonSuffix, 6+3+3)

	require.Panics(t, func() { buildTail(entries, TailNone) })
}

func TestSortPartitionedMatchesStableSort(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(17))
	keys := genKeys(r, 3*parallelSortThreshold)
	type item struct {
		key []byte
		idx int
	}
	items := make([]item, len(keys))
	for i, k := range keys {
		items[i] = item{key: []byte(k), idx: i}
	}
	sequential := slices.Clone(items)
	slices.SortStableFunc(sequential, func(a, b item) bool {
		return bytes.Compare(a.key, b.key) < 0
	})

	sortPartitioned(items, func(it item) []byte { return it.key }, 8)
	require.Equal(t, sequential, items)
}

func TestSortUnique(t *testing.T) {
	t.Parallel()
	keys := [][]byte{[]byte("b"), []byte("a"), []byte("b"), []byte(""), []byte("a")}
	unique, index := sortUnique(keys, 1)
	require.Equal(t, [][]byte{[]byte(""), []byte("a"), []byte("b")}, unique)
	require.Equal(t, []int{2, 1, 2, 0, 1}, index)
}

func TestBuildConsumesKeySetIterator(t *testing.T) {
	t.Parallel()
	ks := keyset.New()
	ks.PushWeighted([]byte("banana"), 2)
	ks.PushWeighted([]byte("apple"), 1)
	ks.PushWeighted([]byte("banana"), 3)
	ks.PushString("cherry")

	cfg := DefaultConfig()
	cfg.IDOrder = IDOrderWeight
	cfg.KeepWeights = true
	tr, err := Build(ks, cfg)
	require.NoError(t, err)
	ks.Reset()
	ks.PushString("zzzzzzzzzzzz")

	require.Equal(t, uint64(3), tr.NumKeys())
	key, err := tr.ReverseLookup(0)
	require.NoError(t, err)
	require.Equal(t, "banana", string(key))
	w, err := tr.Weight(0)
	require.NoError(t, err)
	require.Equal(t, 5.0, w)
	for _, k := range []string{"apple", "banana", "cherry"} {
		_, ok := tr.LookupString(k)
		require.True(t, ok, k)
	}
}

func TestBuildLogsDiagnostics(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = zap.New(core)
	buildStrings(t, cfg, "alpha", "alphabet", "beta")

	require.Equal(t, 1, logs.FilterMessage("sorted keys").Len())
	require.GreaterOrEqual(t, logs.FilterMessage("built level").Len(), 2)
	done := logs.FilterMessage("built trie").All()
	require.Len(t, done, 1)
	require.Equal(t, uint64(3), done[0].ContextMap()["keys"])
}
