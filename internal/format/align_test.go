package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 4096, 1 << 30} {
		assert.True(t, IsPow2(n), "IsPow2(%d)", n)
	}
	for _, n := range []int{0, -1, -8, 3, 6, 12, 24, 4095} {
		assert.False(t, IsPow2(n), "IsPow2(%d)", n)
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		addr  uintptr
		align int
		want  int
	}{
		{0x1000, 16, 0},
		{0x1001, 16, 15},
		{0x100f, 16, 1},
		{0x1008, 8, 0},
		{0x1004, 8, 4},
		{0x1003, 1, 0},
		{0x1010, 64, 48},
	}
	for _, tt := range tests {
		got := Padding(tt.addr, tt.align)
		assert.Equal(t, tt.want, got, "Padding(%#x, %d)", tt.addr, tt.align)
		assert.Zero(t, (tt.addr+uintptr(got))%uintptr(tt.align))
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 8))
	assert.Equal(t, 8, Align8(1))
	assert.Equal(t, 8, Align8(8))
	assert.Equal(t, 16, Align8(9))
	assert.Equal(t, 4096, AlignPage(1))
	assert.Equal(t, 8192, AlignPage(4097))
}
