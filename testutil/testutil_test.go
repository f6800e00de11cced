package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Uint64()
	rng.Reset()
	assert.Equal(t, a, rng.Uint64())
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipfSkew(t *testing.T) {
	rng := NewRNG(1)
	counts := make([]int, 10)
	for range 5000 {
		counts[rng.Zipf(10, 1.5)]++
	}
	assert.Greater(t, counts[0], counts[9]*5)
}

func TestOpsDeterministic(t *testing.T) {
	a := NewRNG(7).Ops(200, DefaultMix)
	b := NewRNG(7).Ops(200, DefaultMix)
	assert.Equal(t, a, b)

	kinds := map[OpKind]int{}
	for _, op := range a {
		kinds[op.Kind]++
		assert.GreaterOrEqual(t, op.Link, 0)
		assert.GreaterOrEqual(t, op.Source, -1)
	}
	assert.Len(t, kinds, 3)
}

func TestModel(t *testing.T) {
	m := NewModel()
	assert.Equal(t, uint64(1), m.Create())
	assert.Equal(t, uint64(2), m.Create())
	assert.True(t, m.Update(2, 1, 1))
	assert.False(t, m.Update(9, 1, 1))

	one := uint64(1)
	assert.Equal(t, []uint64{1, 2}, m.Match(&one, &one))

	assert.True(t, m.Delete(1))
	assert.False(t, m.Delete(1))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, uint64(1), m.Create(), "most recently freed id is reused")
}
