package bits

import "github.com/ozzymcduff/marisa-trie/errutil"

// PackedArray is an immutable array of unsigned integers where every value
// uses exactly Width bits.
type PackedArray struct {
	words []uint64
	n     int
	width int
}

// NewPackedArray packs values using the smallest width that fits max(values).
func NewPackedArray(values []uint64) PackedArray {
	var maxValue uint64
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}
	return NewPackedArrayWithWidth(values, WidthFor(maxValue))
}

// NewPackedArrayWithWidth packs values into a dense []uint64, bitWidth bits each.
func NewPackedArrayWithWidth(values []uint64, bitWidth int) PackedArray {
	errutil.BugOn(bitWidth < 0 || bitWidth > 64, "illegal bit width %d", bitWidth)
	p := PackedArray{n: len(values), width: bitWidth}
	if len(values) == 0 || bitWidth == 0 {
		return p
	}

	totalBits := len(values) * bitWidth
	p.words = make([]uint64, (totalBits+63)/64)
	mask := widthMask(bitWidth)

	for i, val := range values {
		errutil.BugOn(val&^mask != 0, "value %d does not fit into %d bits", val, bitWidth)
		bitPos := i * bitWidth
		wordIdx := bitPos / 64
		bitOffset := uint(bitPos % 64)

		p.words[wordIdx] |= val << bitOffset

		// spill into the next word
		bitsAvailableInWord := 64 - int(bitOffset)
		if bitsAvailableInWord < bitWidth {
			p.words[wordIdx+1] |= val >> uint(bitsAvailableInWord)
		}
	}
	return p
}

// PackedArrayFromWords wraps already packed words. It returns false when the
// words cannot hold n values of the given width.
func PackedArrayFromWords(words []uint64, n, width int) (PackedArray, bool) {
	if n < 0 || width < 0 || width > 64 {
		return PackedArray{}, false
	}
	need := 0
	if width > 0 {
		need = (n*width + 63) / 64
	}
	if len(words) != need {
		return PackedArray{}, false
	}
	return PackedArray{words: words, n: n, width: width}, true
}

// Get returns the value stored at index.
func (p PackedArray) Get(index int) uint64 {
	if p.width == 0 {
		return 0
	}

	bitPos := index * p.width
	wordIdx := bitPos / 64
	bitOffset := uint(bitPos % 64)

	val := p.words[wordIdx] >> bitOffset

	bitsAvailableInWord := 64 - int(bitOffset)
	if bitsAvailableInWord < p.width {
		val |= p.words[wordIdx+1] << uint(bitsAvailableInWord)
	}
	return val & widthMask(p.width)
}

func (p PackedArray) Len() int { return p.n }
func (p PackedArray) Width() int { return p.width }
func (p PackedArray) Words() []uint64 { return p.words }
func (p PackedArray) ByteSize() int { return len(p.words) * 8 }

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(width) - 1
}
