package succinct_bit_vector

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hillbig/rsdic"
)

var benchSizes = []int{1_000, 100_000, 1_000_000}

func setupBench(size int) (*Vector, *rsdic.RSDic) {
	r := rand.New(rand.NewSource(42))
	b := NewBuilder(uint64(size))
	rs := rsdic.New()
	for i := 0; i < size; i++ {
		bit := r.Float32() < 0.3
		b.PushBack(bit)
		rs.PushBack(bit)
	}
	return b.Build(), rs
}

func BenchmarkRank(b *testing.B) {
	for _, size := range benchSizes {
		v, rs := setupBench(size)
		b.Run(fmt.Sprintf("Vector/Size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				v.Rank1(uint64(i % size))
			}
		})
		b.Run(fmt.Sprintf("RSDic/Size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				rs.Rank(uint64(i%size), true)
			}
		})
	}
}

func BenchmarkSelect(b *testing.B) {
	for _, size := range benchSizes {
		v, rs := setupBench(size)
		ones := int(v.NumOnes())
		b.Run(fmt.Sprintf("Vector/Size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				v.Select1(uint64(i % ones))
			}
		})
		b.Run(fmt.Sprintf("RSDic/Size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				rs.Select(uint64(i%ones), true)
			}
		})
	}
}

func BenchmarkMemory(b *testing.B) {
	for _, size := range benchSizes {
		v, rs := setupBench(size)
		b.Run(fmt.Sprintf("Size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				v.Rank1(uint64(i % size))
			}
			b.ReportMetric(float64(v.ByteSize())*8/float64(size), "bits/bit")
			b.ReportMetric(float64(rs.AllocSize())*8/float64(size), "rsdic_bits/bit")
		})
	}
}
