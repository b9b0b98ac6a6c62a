package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type particle struct {
	X, Y, Z float32
	Life    uint32
	Flags   [4]uint8
}

func TestBind_PlacesStructInPayload(t *testing.T) {
	la, err := NewLinear(1024, nil)
	require.NoError(t, err)
	defer la.Close()

	_, payload, err := la.Allocate(int(unsafe.Sizeof(particle{})), int(unsafe.Alignof(particle{})))
	require.NoError(t, err)

	var p *particle
	Bind(payload, &p)
	require.NotNil(t, p)

	p.Life = 0x01020304
	assert.Equal(t, []byte{4, 3, 2, 1}, payload[12:16], "writes land in the payload")
	assert.Equal(t, unsafe.Pointer(&payload[0]), unsafe.Pointer(p))
}

func TestPlace_Typed(t *testing.T) {
	fl, err := NewFreeList(1024, nil)
	require.NoError(t, err)
	defer fl.Close()

	_, payload, err := fl.Allocate(8*16, 8)
	require.NoError(t, err)

	arr := Place[[16]uint64](payload)
	for i := range arr {
		arr[i] = uint64(i)
	}
	assert.Equal(t, byte(15), payload[15*8])
}

func TestBind_Panics(t *testing.T) {
	small := make([]byte, 4)
	var p *particle

	assert.Panics(t, func() { Bind(small, &p) }, "payload smaller than T")
	assert.Panics(t, func() { Bind(make([]byte, 64), p) }, "not a **T")
	assert.Panics(t, func() { Bind(make([]byte, 64), (**particle)(nil)) }, "nil pointer")

	var s *struct{ Name string }
	assert.Panics(t, func() { Bind(make([]byte, 64), &s) }, "T holds Go pointers")

	aligned := make([]uint64, 4)
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&aligned[0])), 32)
	var u *uint64
	assert.Panics(t, func() { Bind(raw[1:], &u) }, "misaligned payload")
}
