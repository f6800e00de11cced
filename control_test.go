package doublets_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets"
)

func TestControlCodes(t *testing.T) {
	c := doublets.DefaultConstants[uint32]()

	for _, ctrl := range []doublets.Control{doublets.Continue, doublets.Break, doublets.Skip} {
		assert.True(t, ctrl.Valid())
		assert.Equal(t, ctrl, c.ParseControl(c.Code(ctrl)), ctrl.String())
	}
	assert.False(t, doublets.Control(3).Valid())

	assert.Equal(t, c.Continue, c.Code(doublets.Continue))
	assert.Equal(t, c.Break, c.Code(doublets.Break))
	assert.Equal(t, c.Skip, c.Code(doublets.Skip))

	// Any other number stops the iteration.
	assert.Equal(t, doublets.Break, c.ParseControl(0))
	assert.Equal(t, doublets.Break, c.ParseControl(12345))
	assert.Equal(t, doublets.Break, c.ParseControl(c.Any))
}

func TestControlOf(t *testing.T) {
	c := doublets.DefaultConstants[uint32]()

	tests := []struct {
		name    string
		in      any
		want    doublets.Control
		wantErr bool
	}{
		{"control", doublets.Skip, doublets.Skip, false},
		{"invalid control", doublets.Control(9), doublets.Break, true},
		{"id type", c.Continue, doublets.Continue, false},
		{"wide continue", uint64(c.Continue), doublets.Continue, false},
		{"wide out of range", uint64(1) << 40, doublets.Break, false},
		{"int skip", int(c.Skip), doublets.Skip, false},
		{"negative", -1, doublets.Break, false},
		{"small", uint8(3), doublets.Break, false},
		{"string", "continue", doublets.Break, true},
		{"nil", nil, doublets.Break, true},
		{"float continue", float64(c.Continue), doublets.Continue, false},
		{"float skip", float64(c.Skip), doublets.Skip, false},
		{"float truncated", float64(c.Break) + 0.75, doublets.Break, false},
		{"float32 small", float32(1.5), doublets.Break, false},
		{"float negative", -1.0, doublets.Break, false},
		{"float nan", math.NaN(), doublets.Break, false},
		{"float inf", math.Inf(1), doublets.Break, false},
		{"float out of range", float64(1 << 40), doublets.Break, false},
		{"complex", complex(1, 0), doublets.Break, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ControlOf(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				require.ErrorIs(t, err, doublets.ErrVisitorProtocol)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestControlOfMessage(t *testing.T) {
	c := doublets.DefaultConstants[uint64]()
	_, err := c.ControlOf("x")
	assert.EqualError(t, err, `visitor protocol: expected control code, found string(x)`)
}
