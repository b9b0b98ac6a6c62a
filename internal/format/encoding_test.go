package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordRoundTrip(t *testing.T) {
	b := make([]byte, 24)

	PutU64(b, 8, math.MaxUint64)
	PutU32(b, 0, 0xdeadbeef)

	assert.Equal(t, uint64(math.MaxUint64), ReadU64(b, 8))
	assert.Equal(t, uint32(0xdeadbeef), ReadU32(b, 0))
	assert.Equal(t, byte(0xef), b[0], "little-endian low byte first")
}
