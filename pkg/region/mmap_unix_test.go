//go:build unix

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/format"
)

func TestMmap_Acquire(t *testing.T) {
	r, err := Mmap{}.Acquire(10_000, format.MaxAlign)
	require.NoError(t, err)

	data := r.Bytes()
	require.Len(t, data, 10_000)
	assert.Zero(t, r.Base()%format.PageSize, "mappings are page aligned")

	// Anonymous mappings are zero-filled and writable.
	assert.Equal(t, byte(0), data[9_999])
	data[0], data[9_999] = 0xAA, 0xBB
	assert.Equal(t, byte(0xBB), data[9_999])

	require.NoError(t, r.Release())
	require.NoError(t, r.Release(), "second release is a no-op")
}

func TestMmap_AlignmentAbovePage(t *testing.T) {
	align := 4 * format.PageSize
	r, err := Mmap{}.Acquire(100, align)
	require.NoError(t, err)
	assert.Zero(t, r.Base()%uintptr(align))
	assert.Len(t, r.Bytes(), 100)
	require.NoError(t, r.Release())
}

func TestMmap_UnobtainableRegionFails(t *testing.T) {
	// Larger than physical memory plus swap on any test host, but below the
	// overflow guard, so the request reaches the kernel.
	_, err := Mmap{}.Acquire(1<<46, format.MaxAlign)
	require.ErrorIs(t, err, ErrAcquire)

	_, err = Mmap{}.Acquire(1<<62, format.MaxAlign)
	require.ErrorIs(t, err, ErrAcquire)
}

func TestDefault_IsMmap(t *testing.T) {
	assert.IsType(t, Mmap{}, Default)
}
