package mem

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aligned(b []byte) bool {
	return uintptr(unsafe.Pointer(&b[0]))%Alignment == 0 //nolint:gosec // address check only
}

func TestAllocAligned(t *testing.T) {
	// Odd sizes too; slot tables only ask for multiples of 32 or 64.
	for _, size := range []int{1, 31, 32, 64, 65, 1000, 64 * 1024} {
		buf := AllocAligned(size)
		require.Len(t, buf, size)
		assert.Equal(t, size, cap(buf), "capacity is clipped so appends cannot reach the padding")
		assert.True(t, aligned(buf), "size %d", size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestHeapGrowStaysAligned(t *testing.T) {
	h := NewHeap(nil)
	for _, size := range []int{64, 128, 4096, 8192 + 64} {
		require.NoError(t, h.Grow(size))
		assert.True(t, aligned(h.Bytes()), "size %d", size)
	}
}

func BenchmarkAllocAligned(b *testing.B) {
	for _, slots := range []int{1, 1024, 64 * 1024} {
		size := slots * 64
		b.Run(fmt.Sprintf("slots=%d", slots), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = AllocAligned(size)
			}
		})
	}
}
