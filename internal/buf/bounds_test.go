package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	assert.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok, "expected overflow when adding to MaxInt")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	assert.False(t, ok, "expected underflow when subtracting from MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	got, ok := MulOverflowSafe(64, 10)
	require.True(t, ok)
	assert.Equal(t, 640, got)

	got, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	assert.Zero(t, got)

	_, ok = MulOverflowSafe(math.MaxInt/2+1, 2)
	assert.False(t, ok)

	_, ok = MulOverflowSafe(-1, 8)
	assert.False(t, ok)
}

func TestCheckRange(t *testing.T) {
	end, err := CheckRange(128, 64, 64)
	require.NoError(t, err)
	assert.Equal(t, 128, end)

	_, err = CheckRange(128, 64, 65)
	require.Error(t, err)

	_, err = CheckRange(128, math.MaxInt, 1)
	require.Error(t, err)

	_, err = CheckRange(128, -1, 1)
	require.Error(t, err)
}
