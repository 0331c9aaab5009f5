package bits

import "math/bits"

// MostSignificantBit returns the index of the most significant bit.
func MostSignificantBit(x uint64) int {
	if x == 0 {
		return -1
	}
	return 63 - bits.LeadingZeros64(x)
}

// WidthFor returns the number of bits needed to store every value in [0, maxValue].
func WidthFor(maxValue uint64) int {
	return MostSignificantBit(maxValue) + 1
}

// SelectInWord returns the position of the k-th (0-based) set bit of w.
// k must be smaller than the popcount of w.
func SelectInWord(w uint64, k int) int {
	// byte-wise skip, then clear low bits
	pos := 0
	for {
		c := bits.OnesCount8(uint8(w))
		if k < c {
			break
		}
		k -= c
		w >>= 8
		pos += 8
	}
	for ; k > 0; k-- {
		w &= w - 1
	}
	return pos + bits.TrailingZeros64(w)
}
