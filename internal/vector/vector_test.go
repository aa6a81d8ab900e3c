package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastLen(t *testing.T) {
	testCases := []struct {
		name      string
		inputs    []Vector
		expected  int
		expectErr bool
	}{
		{name: "all scalars", inputs: []Vector{{1}, {2}}, expected: 1},
		{name: "scalar and series", inputs: []Vector{{1}, {1, 2, 3}}, expected: 3},
		{name: "series and scalar", inputs: []Vector{{1, 2, 3}, {4}}, expected: 3},
		{name: "equal series", inputs: []Vector{{1, 2}, {3, 4}}, expected: 2},
		{name: "error - mismatched series", inputs: []Vector{{1, 2}, {1, 2, 3}}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := BroadcastLen(tc.inputs...)
			if tc.expectErr {
				require.ErrorIs(t, err, ErrLengthMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}
}

func TestZip_Broadcasts(t *testing.T) {
	out, err := Zip(Vector{2}, Vector{1, 2, 3}, func(x, y float64) float64 { return x * y })
	require.NoError(t, err)
	assert.Equal(t, Vector{2, 4, 6}, out)
}

func TestBroadcast(t *testing.T) {
	out, err := Scalar(7).Broadcast(3)
	require.NoError(t, err)
	assert.Equal(t, Vector{7, 7, 7}, out)

	_, err = Vector{1, 2}.Broadcast(3)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSanitize(t *testing.T) {
	in := Vector{1, math.NaN(), math.Inf(1), math.Inf(-1), -2}
	out := Sanitize(in)
	assert.Equal(t, Vector{1, 0, 0, 0, -2}, out)
	assert.True(t, math.IsNaN(in[1]), "input must not be modified")
}

func TestAllWithin(t *testing.T) {
	assert.True(t, AllWithin(Vector{0, 1e-13, -1e-13}, 1e-12))
	assert.False(t, AllWithin(Vector{0, 1e-3}, 1e-12))
	assert.False(t, AllWithin(Vector{math.NaN()}, 1e-12))
}
