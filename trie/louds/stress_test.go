package louds

import (
	"math/rand"
	"testing"

	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/require"
)

const (
	stressRuns     = 20
	stressBaseSeed = 20_240_601
)

func TestStressRandomKeySets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	t.Parallel()
	configs := allConfigs()
	bar := progressbar.Default(stressRuns)
	for run := 0; run < stressRuns; run++ {
		seed := int64(stressBaseSeed + run)
		r := rand.New(rand.NewSource(seed))
		keys := genKeys(r, 5_000+r.Intn(20_000))
		cfg := configs[r.Intn(len(configs))]
		t.Logf("run %d: seed %d, %s, %d keys", run, seed, configName(cfg), len(keys))

		tr := buildStrings(t, cfg, keys...)
		data, err := tr.Serialize()
		require.NoError(t, err, "seed %d", seed)
		var loaded Trie
		require.NoError(t, Deserialize(data, &loaded), "seed %d", seed)

		checkTrie(t, &loaded, keys, genProbes(r, keys, 200))
		_ = bar.Add(1)
	}
}
