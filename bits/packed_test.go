package bits

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackedArray(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 15, 6, 7}

	packed := NewPackedArray(values)
	require.Equal(t, 4, packed.Width())
	require.Equal(t, len(values), packed.Len())

	for i, v := range values {
		if got := packed.Get(i); got != v {
			t.Errorf("Mismatch at %d: expected %d, got %d", i, v, got)
		}
	}
}

func TestPackedArrayCrossWord(t *testing.T) {
	// > 64/6 values so entries straddle word boundaries
	values := make([]uint64, 20)
	for i := range values {
		values[i] = uint64(i % 64)
	}

	packed := NewPackedArrayWithWidth(values, 6)

	for i, v := range values {
		if got := packed.Get(i); got != v {
			t.Errorf("Mismatch at %d: expected %d, got %d", i, v, got)
		}
	}
}

func TestPackedArrayWidths(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for width := 1; width <= 64; width++ {
		values := make([]uint64, 300)
		for i := range values {
			values[i] = r.Uint64() & widthMask(width)
		}
		packed := NewPackedArrayWithWidth(values, width)
		for i, v := range values {
			require.Equal(t, v, packed.Get(i), "width=%d index=%d", width, i)
		}

		restored, ok := PackedArrayFromWords(packed.Words(), packed.Len(), width)
		require.True(t, ok)
		require.Equal(t, values[len(values)-1], restored.Get(len(values)-1))
	}
}

func TestPackedArrayZeroWidth(t *testing.T) {
	packed := NewPackedArray([]uint64{0, 0, 0})
	require.Equal(t, 0, packed.Width())
	require.Equal(t, 3, packed.Len())
	require.Equal(t, uint64(0), packed.Get(2))
	require.Equal(t, 0, packed.ByteSize())

	_, ok := PackedArrayFromWords([]uint64{1}, 3, 0)
	require.False(t, ok)
}

func TestSelectInWord(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 1000; iter++ {
		w := r.Uint64()
		k := 0
		for pos := 0; pos < 64; pos++ {
			if w&(1<<uint(pos)) == 0 {
				continue
			}
			require.Equal(t, pos, SelectInWord(w, k), "w=%x k=%d", w, k)
			k++
		}
	}
}

func TestWidthFor(t *testing.T) {
	require.Equal(t, 0, WidthFor(0))
	require.Equal(t, 1, WidthFor(1))
	require.Equal(t, 8, WidthFor(255))
	require.Equal(t, 9, WidthFor(256))
	require.Equal(t, 64, WidthFor(^uint64(0)))
}

func TestReverseAndLCP(t *testing.T) {
	require.Equal(t, []byte("cba"), Reverse([]byte("abc")))
	require.Equal(t, []byte{}, Reverse([]byte{}))
	b := []byte("abcd")
	require.Equal(t, []byte("dcba"), ReverseInPlace(b))

	require.Equal(t, 2, LCP([]byte("abx"), []byte("aby")))
	require.Equal(t, 0, LCP(nil, []byte("a")))
	require.True(t, HasSuffix([]byte("orange"), []byte("nge")))
	require.False(t, HasSuffix([]byte("ge"), []byte("nge")))
}
