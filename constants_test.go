package doublets_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets"
)

func TestDefaultConstants(t *testing.T) {
	c := doublets.DefaultConstants[uint64]()
	require.NoError(t, c.Validate())

	assert.Equal(t, uint64(0), c.IndexPart)
	assert.Equal(t, uint64(1), c.SourcePart)
	assert.Equal(t, uint64(2), c.TargetPart)
	assert.Equal(t, uint64(0), c.Null)

	top := uint64(math.MaxUint64)
	assert.Equal(t, top, c.Continue)
	assert.Equal(t, top-1, c.Break)
	assert.Equal(t, top-2, c.Skip)
	assert.Equal(t, top-3, c.Any)
	assert.Equal(t, top-4, c.Itself)
	assert.Equal(t, doublets.Range[uint64]{Lo: 1, Hi: top - 5}, c.InternalRange)
	assert.Nil(t, c.ExternalRange)

	assert.True(t, c.IsInternal(1))
	assert.False(t, c.IsInternal(0))
	assert.False(t, c.IsInternal(c.Any))
	assert.False(t, c.IsExternal(c.Any))
}

func TestViaExternal(t *testing.T) {
	c := doublets.ViaOnlyExternal[uint32](true)
	require.NoError(t, c.Validate())

	half := uint32(math.MaxUint32 / 2)
	assert.Equal(t, half, c.Continue)
	assert.Equal(t, half-5, c.InternalRange.Hi)
	require.NotNil(t, c.ExternalRange)
	assert.Equal(t, doublets.Range[uint32]{Lo: half + 1, Hi: math.MaxUint32}, *c.ExternalRange)

	assert.True(t, c.IsExternal(half+1))
	assert.True(t, c.IsExternal(math.MaxUint32))
	assert.False(t, c.IsExternal(half))
	assert.False(t, c.IsInternal(half+1))
}

func TestFullConstantsCopiesExternal(t *testing.T) {
	ext := doublets.Range[uint32]{Lo: 2000, Hi: 3000}
	c := doublets.ViaRanges(doublets.Range[uint32]{Lo: 1, Hi: 1000}, &ext)
	ext.Lo = 1

	require.NoError(t, c.Validate())
	assert.Equal(t, uint32(2000), c.ExternalRange.Lo)
}

func TestValidate(t *testing.T) {
	base := func() doublets.Constants[uint32] {
		return doublets.ViaRanges(doublets.Range[uint32]{Lo: 1, Hi: 1000}, &doublets.Range[uint32]{Lo: 2000, Hi: 3000})
	}

	tests := []struct {
		name   string
		mutate func(c *doublets.Constants[uint32])
	}{
		{"parts not a permutation", func(c *doublets.Constants[uint32]) { c.TargetPart = 1 }},
		{"part out of range", func(c *doublets.Constants[uint32]) { c.TargetPart = 3 }},
		{"null not zero", func(c *doublets.Constants[uint32]) { c.Null = 7 }},
		{"internal not from one", func(c *doublets.Constants[uint32]) { c.InternalRange.Lo = 2 }},
		{"empty internal", func(c *doublets.Constants[uint32]) { c.InternalRange = doublets.Range[uint32]{Lo: 1, Hi: 0} }},
		{"reserved inside internal", func(c *doublets.Constants[uint32]) { c.Any = 5 }},
		{"reserved twice", func(c *doublets.Constants[uint32]) { c.Skip = c.Break }},
		{"reserved is null", func(c *doublets.Constants[uint32]) { c.Itself = 0 }},
		{"empty external", func(c *doublets.Constants[uint32]) { c.ExternalRange = &doublets.Range[uint32]{Lo: 10, Hi: 5} }},
		{"external overlaps internal", func(c *doublets.Constants[uint32]) { c.ExternalRange = &doublets.Range[uint32]{Lo: 900, Hi: 3000} }},
		{"reserved inside external", func(c *doublets.Constants[uint32]) { c.ExternalRange = &doublets.Range[uint32]{Lo: 996, Hi: 3000} }},
	}

	require.NoError(t, base().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), doublets.ErrInvalidConstants)
		})
	}
}

func TestQueryLayout(t *testing.T) {
	c := doublets.DefaultConstants[uint32]()
	assert.Equal(t, doublets.Query[uint32]{7, 8, 9}, c.Query(7, 8, 9))
	assert.Equal(t, doublets.Query[uint32]{c.Any, c.Any, c.Any}, c.AnyQuery())

	c.IndexPart, c.SourcePart, c.TargetPart = 2, 0, 1
	require.NoError(t, c.Validate())
	assert.Equal(t, doublets.Query[uint32]{8, 9, 7}, c.Query(7, 8, 9))
}

func TestConstantsEqual(t *testing.T) {
	a := doublets.ViaOnlyExternal[uint64](true)
	b := doublets.ViaOnlyExternal[uint64](true)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(doublets.DefaultConstants[uint64]()))
}

func TestLinkString(t *testing.T) {
	assert.Equal(t, "(3: 1 -> 2)", doublets.Link[uint64]{ID: 3, Source: 1, Target: 2}.String())
}
